// Package alarm schedules spoken timers and alarms. Requests arrive as
// natural language ("set a timer for five minutes"), entries fire through a
// callback, and pending entries are addressed by their 1-based position in
// insertion order.
package alarm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ariabot/aria/internal/router"
)

// Kind distinguishes timers from alarms. They behave identically apart from
// the cue sound played when they fire.
type Kind string

const (
	KindTimer Kind = "timer"
	KindAlarm Kind = "alarm"
)

// Sentinel errors for cancellation requests.
var (
	// ErrNone means no entries are pending.
	ErrNone = errors.New("alarm: nothing pending")

	// ErrAmbiguous means several entries are pending and the request did
	// not say which one.
	ErrAmbiguous = errors.New("alarm: request is ambiguous")

	// ErrNotFound means the requested position does not exist.
	ErrNotFound = errors.New("alarm: no such entry")

	// ErrParse means no duration could be extracted from the request.
	ErrParse = errors.New("alarm: cannot parse duration")
)

// Entry is one pending timer or alarm.
type Entry struct {
	Kind     Kind
	Duration time.Duration
	FireAt   time.Time
}

// FireFunc is called from the scheduler's timer goroutine when an entry
// expires. The entry is already removed from the pending list.
type FireFunc func(e Entry)

// Scheduler owns the pending timers and alarms of one session.
type Scheduler struct {
	fire FireFunc

	mu      sync.Mutex
	pending []*pendingEntry
	closed  bool
}

type pendingEntry struct {
	Entry
	timer *time.Timer
}

// NewScheduler returns a Scheduler that calls fire for every expiring entry.
func NewScheduler(fire FireFunc) *Scheduler {
	return &Scheduler{fire: fire}
}

var quantityWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var unitRe = regexp.MustCompile(`\b(second|seconds|minute|minutes|hour|hours)\b`)

// ParseRequest extracts the kind and duration from a natural-language
// request. It understands digits and the number words one through nine;
// "a"/"an" count as one ("in a minute").
func ParseRequest(text string) (Kind, time.Duration, error) {
	norm := router.Normalize(text)

	kind := KindTimer
	if strings.Contains(norm, "alarm") {
		kind = KindAlarm
	}

	loc := unitRe.FindStringIndex(norm)
	if loc == nil {
		return "", 0, ErrParse
	}
	unit := norm[loc[0]:loc[1]]

	// The quantity is the last number-like word before the unit.
	qty := -1
	for _, w := range strings.Fields(norm[:loc[0]]) {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			qty = n
			continue
		}
		if n, ok := quantityWords[w]; ok {
			qty = n
		}
	}
	if qty <= 0 {
		return "", 0, ErrParse
	}

	var d time.Duration
	switch strings.TrimSuffix(unit, "s") {
	case "second":
		d = time.Duration(qty) * time.Second
	case "minute":
		d = time.Duration(qty) * time.Minute
	case "hour":
		d = time.Duration(qty) * time.Hour
	}
	return kind, d, nil
}

// Set parses the request and schedules a new entry.
func (s *Scheduler) Set(text string) (Entry, error) {
	kind, d, err := ParseRequest(text)
	if err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, errors.New("alarm: scheduler is closed")
	}

	pe := &pendingEntry{Entry: Entry{Kind: kind, Duration: d, FireAt: time.Now().Add(d)}}
	pe.timer = time.AfterFunc(d, func() { s.expire(pe) })
	s.pending = append(s.pending, pe)
	return pe.Entry, nil
}

// expire removes the entry and invokes the fire callback.
func (s *Scheduler) expire(pe *pendingEntry) {
	s.mu.Lock()
	removed := s.remove(pe)
	closed := s.closed
	s.mu.Unlock()
	if removed && !closed && s.fire != nil {
		s.fire(pe.Entry)
	}
}

// remove deletes pe from the pending list. Caller holds the lock.
func (s *Scheduler) remove(pe *pendingEntry) bool {
	for i, e := range s.pending {
		if e == pe {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Cancel removes a pending entry chosen by the request. With exactly one
// entry pending, any cancellation request matches it. With several pending,
// the request must name a position ("cancel the second timer"); otherwise
// ErrAmbiguous is returned.
func (s *Scheduler) Cancel(text string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return Entry{}, ErrNone
	}

	pos := -1
	for _, w := range strings.Fields(router.Normalize(text)) {
		if n, ok := router.Ordinal(w); ok {
			pos = n
			break
		}
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			pos = n
			break
		}
	}

	if pos < 0 {
		if len(s.pending) > 1 {
			return Entry{}, ErrAmbiguous
		}
		pos = 1
	}
	if pos > len(s.pending) {
		return Entry{}, ErrNotFound
	}

	pe := s.pending[pos-1]
	pe.timer.Stop()
	s.remove(pe)
	return pe.Entry, nil
}

// List renders the pending entries as a speakable summary, oldest first.
func (s *Scheduler) List() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return "There are no timers or alarms set."
	}
	parts := make([]string, len(s.pending))
	for i, pe := range s.pending {
		parts[i] = fmt.Sprintf("%s %d set for %s", pe.Kind, i+1, pe.FireAt.Format("3:04:05 PM"))
	}
	return strings.Join(parts, ". ") + "."
}

// Pending returns the number of pending entries.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels every pending entry and rejects further requests.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, pe := range s.pending {
		pe.timer.Stop()
	}
	s.pending = nil
}
