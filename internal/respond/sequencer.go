package respond

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// waitInterval is how long the sequencer waits for the next chunk
	// before counting a retry.
	waitInterval = time.Second

	// maxRetries is how many wait intervals may elapse for one chunk
	// before the whole sequence is abandoned.
	maxRetries = 5
)

// ErrSequenceTimeout is returned when a chunk did not become ready within
// the retry budget. The sequence is abandoned; later chunks are never
// played out of order.
var ErrSequenceTimeout = errors.New("respond: chunk sequence timed out")

// Sequencer collects synthesised chunk artifacts by index and plays them
// strictly in ascending order, regardless of the order synthesis finishes.
type Sequencer struct {
	mu     sync.Mutex
	ready  map[int]string
	notify chan struct{}
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{
		ready:  make(map[int]string),
		notify: make(chan struct{}, 1),
	}
}

// Put registers the artifact for chunk index i and wakes the runner.
func (s *Sequencer) Put(i int, path string) {
	s.mu.Lock()
	s.ready[i] = path
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// take removes and returns the artifact for index i.
func (s *Sequencer) take(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.ready[i]
	if ok {
		delete(s.ready, i)
	}
	return path, ok
}

// Drain removes and returns all remaining artifacts, in no particular
// order. Used to clean up after an aborted sequence.
func (s *Sequencer) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.ready))
	for _, p := range s.ready {
		paths = append(paths, p)
	}
	s.ready = make(map[int]string)
	return paths
}

// Run plays chunks 0 through total-1 in order, calling play for each as it
// becomes ready. A chunk that stays missing for the full retry budget
// aborts the sequence with ErrSequenceTimeout. Run returns the first play
// error or ctx.Err() on cancellation; remaining artifacts stay registered
// for [Sequencer.Drain].
func (s *Sequencer) Run(ctx context.Context, total int, play func(ctx context.Context, path string) error) error {
	timer := time.NewTimer(waitInterval)
	defer timer.Stop()

	for i := 0; i < total; i++ {
		retries := 0
		for {
			if path, ok := s.take(i); ok {
				if err := play(ctx, path); err != nil {
					return err
				}
				break
			}
			if retries >= maxRetries {
				return ErrSequenceTimeout
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(waitInterval)
			select {
			case <-s.notify:
				// Re-check without counting a retry; the wakeup may be
				// for a later chunk.
			case <-timer.C:
				retries++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
