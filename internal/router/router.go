// Package router decides what to do with a transcript: whether the
// assistant was addressed at all, and which intent the utterance carries.
package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// Intent is the classified purpose of an utterance.
type Intent int

const (
	// IntentChat is the default: generate a conversational reply.
	IntentChat Intent = iota

	// IntentStop interrupts the in-flight response.
	IntentStop

	// IntentReset clears all conversational state.
	IntentReset

	// IntentLeave disconnects from the voice channel.
	IntentLeave

	// IntentTimerSet sets a timer or alarm.
	IntentTimerSet

	// IntentTimerCancel cancels a timer or alarm.
	IntentTimerCancel

	// IntentTimerList reads out the pending timers and alarms.
	IntentTimerList

	// IntentSearch answers a question with web search.
	IntentSearch

	// IntentSong plays a requested song.
	IntentSong
)

// String returns the intent name for logs.
func (i Intent) String() string {
	switch i {
	case IntentChat:
		return "chat"
	case IntentStop:
		return "stop"
	case IntentReset:
		return "reset"
	case IntentLeave:
		return "leave"
	case IntentTimerSet:
		return "timer-set"
	case IntentTimerCancel:
		return "timer-cancel"
	case IntentTimerList:
		return "timer-list"
	case IntentSearch:
		return "search"
	case IntentSong:
		return "song"
	}
	return "unknown"
}

// maxFuzzyDistance is the edit distance still accepted as a trigger match.
const maxFuzzyDistance = 1

// Config parameterises a Router.
type Config struct {
	// Triggers are the wake words. At least one is required.
	Triggers []string

	// IgnorePhrases are transcripts dropped outright after normalisation,
	// such as the filler tokens the transcriber emits for silence.
	IgnorePhrases []string

	// Fuzzy accepts trigger tokens within one edit of a wake word, so
	// common transcription misspellings still address the assistant.
	Fuzzy bool
}

// Router classifies transcripts.
type Router struct {
	triggers []string
	trigRes  []*regexp.Regexp
	ignore   map[string]struct{}
	fuzzy    bool
}

// New builds a Router from cfg.
func New(cfg Config) (*Router, error) {
	if len(cfg.Triggers) == 0 {
		return nil, fmt.Errorf("router: at least one trigger is required")
	}
	r := &Router{fuzzy: cfg.Fuzzy, ignore: make(map[string]struct{}, len(cfg.IgnorePhrases))}
	for _, t := range cfg.Triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, fmt.Errorf("router: empty trigger")
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("router: compile trigger %q: %w", t, err)
		}
		r.triggers = append(r.triggers, t)
		r.trigRes = append(r.trigRes, re)
	}
	for _, p := range cfg.IgnorePhrases {
		r.ignore[Normalize(p)] = struct{}{}
	}
	return r, nil
}

var (
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}' ]+`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, strips punctuation, and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// leadJunkRe trims the punctuation a stripped leading trigger leaves behind
// ("Aria, what time is it?" → "what time is it?").
var leadJunkRe = regexp.MustCompile(`^[\s,.!?;:]+`)

// Prepare decides whether the transcript addresses the assistant and
// returns the text with the first trigger occurrence removed. Casing and
// punctuation are preserved; normalisation is only used for the gating
// checks. It reports false for transcripts that should be dropped: single
// words, configured ignore phrases, and (outside free-listen mode) text
// without a wake word.
func (r *Router) Prepare(raw string, freeListen bool) (string, bool) {
	norm := Normalize(raw)
	if norm == "" {
		return "", false
	}
	if _, ok := r.ignore[norm]; ok {
		return "", false
	}
	// A lone word is never a real request; it is almost always an STT
	// artifact of a cough or a door slam.
	if !strings.Contains(norm, " ") {
		return "", false
	}

	stripped, found := r.stripFirstTrigger(raw)
	if !found {
		if !freeListen {
			return "", false
		}
		stripped = raw
	}

	cleaned := strings.TrimSpace(spaceRe.ReplaceAllString(stripped, " "))
	cleaned = leadJunkRe.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// stripFirstTrigger removes the first wake-word occurrence and reports
// whether one was present.
func (r *Router) stripFirstTrigger(text string) (string, bool) {
	best := -1
	bestEnd := 0
	for _, re := range r.trigRes {
		if loc := re.FindStringIndex(text); loc != nil && (best == -1 || loc[0] < best) {
			best, bestEnd = loc[0], loc[1]
		}
	}
	if best >= 0 {
		return text[:best] + text[bestEnd:], true
	}
	if !r.fuzzy {
		return text, false
	}

	// Token-level fuzzy pass for transcription misspellings. Tokens are
	// normalised for the comparison only; the remaining text keeps its form.
	words := strings.Fields(text)
	for i, w := range words {
		for _, t := range r.triggers {
			if matchr.DamerauLevenshtein(Normalize(w), t) <= maxFuzzyDistance {
				return strings.Join(append(words[:i:i], words[i+1:]...), " "), true
			}
		}
	}
	return text, false
}

// Ordinal maps a spoken ordinal word to its 1-based position.
func Ordinal(word string) (int, bool) {
	n, ok := ordinals[strings.ToLower(word)]
	return n, ok
}

var ordinals = map[string]int{
	"first":   1,
	"second":  2,
	"third":   3,
	"fourth":  4,
	"fifth":   5,
	"sixth":   6,
	"seventh": 7,
	"eighth":  8,
	"ninth":   9,
}
