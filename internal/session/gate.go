package session

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate serialises response turns. Only one utterance may be in flight per
// voice session; while a turn holds the gate, new utterances are dropped
// rather than queued. Stop requests cancel the active turn through
// [Gate.Interrupt].
type Gate struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	current *Turn
}

// NewGate returns a Gate with no active turn.
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Turn is the token held by the single in-flight response. Its context is
// cancelled when the turn is interrupted; Done must be called exactly when
// the turn finishes, on every path. Done is idempotent.
type Turn struct {
	ctx    context.Context
	cancel context.CancelFunc

	once    sync.Once
	release func()
}

// TryEnter attempts to start a turn. It never blocks: if another turn is in
// flight it returns (nil, false) and the caller drops the utterance.
func (g *Gate) TryEnter(ctx context.Context) (*Turn, bool) {
	if !g.sem.TryAcquire(1) {
		return nil, false
	}

	turnCtx, cancel := context.WithCancel(ctx)
	t := &Turn{ctx: turnCtx, cancel: cancel}
	t.release = func() {
		g.mu.Lock()
		if g.current == t {
			g.current = nil
		}
		g.mu.Unlock()
		cancel()
		g.sem.Release(1)
	}

	g.mu.Lock()
	g.current = t
	g.mu.Unlock()
	return t, true
}

// Interrupt cancels the in-flight turn, if any, and reports whether one was
// active. The turn's goroutines observe the cancellation through
// [Turn.Context]; the gate itself is released when the turn calls Done.
func (g *Gate) Interrupt() bool {
	g.mu.Lock()
	t := g.current
	g.mu.Unlock()
	if t == nil {
		return false
	}
	t.cancel()
	return true
}

// Active reports whether a turn is currently in flight.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// Context returns the turn's context. It is cancelled when the turn is
// interrupted or finished.
func (t *Turn) Context() context.Context {
	return t.ctx
}

// Done releases the gate. Safe to call multiple times; only the first call
// has effect.
func (t *Turn) Done() {
	t.once.Do(t.release)
}
