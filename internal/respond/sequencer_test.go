package respond

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// playRecorder collects the order in which artifacts were played.
type playRecorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *playRecorder) play(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

func (r *playRecorder) played() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

func TestSequencer_PlaysInOrder(t *testing.T) {
	t.Parallel()
	s := NewSequencer()
	rec := &playRecorder{}

	// Chunks finish out of order.
	s.Put(2, "c")
	s.Put(0, "a")
	s.Put(1, "b")

	if err := s.Run(context.Background(), 3, rec.play); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := rec.played()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("played %d chunks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("played[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSequencer_WaitsForLateChunks(t *testing.T) {
	t.Parallel()
	s := NewSequencer()
	rec := &playRecorder{}

	s.Put(1, "b")
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.Put(0, "a")
	}()

	if err := s.Run(context.Background(), 2, rec.play); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := rec.played()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("played = %v, want [a b]", got)
	}
}

func TestSequencer_TimesOutOnMissingChunk(t *testing.T) {
	t.Parallel()
	s := NewSequencer()
	rec := &playRecorder{}

	s.Put(1, "b") // chunk 0 never arrives

	start := time.Now()
	err := s.Run(context.Background(), 2, rec.play)
	if !errors.Is(err, ErrSequenceTimeout) {
		t.Fatalf("Run error = %v, want ErrSequenceTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < maxRetries*waitInterval {
		t.Errorf("Run returned after %s, want at least %s", elapsed, maxRetries*waitInterval)
	}
	if got := rec.played(); len(got) != 0 {
		t.Errorf("played %v, want nothing", got)
	}

	// The stranded artifact is recoverable for cleanup.
	drained := s.Drain()
	if len(drained) != 1 || drained[0] != "b" {
		t.Errorf("Drain = %v, want [b]", drained)
	}
}

func TestSequencer_ContextCancellation(t *testing.T) {
	t.Parallel()
	s := NewSequencer()
	rec := &playRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := s.Run(ctx, 1, rec.play)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestSequencer_PlayErrorAborts(t *testing.T) {
	t.Parallel()
	s := NewSequencer()
	rec := &playRecorder{err: errors.New("voice connection lost")}

	s.Put(0, "a")
	s.Put(1, "b")

	err := s.Run(context.Background(), 2, rec.play)
	if err == nil || !errors.Is(err, rec.err) {
		t.Fatalf("Run error = %v, want the play error", err)
	}
	if got := rec.played(); len(got) != 1 {
		t.Errorf("played %v, want exactly the first chunk", got)
	}
}
