package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariabot/aria/internal/session"
)

func TestGate_SingleFlight(t *testing.T) {
	t.Parallel()
	g := session.NewGate()

	turn, ok := g.TryEnter(context.Background())
	if !ok {
		t.Fatal("TryEnter on idle gate should succeed")
	}
	if _, ok := g.TryEnter(context.Background()); ok {
		t.Fatal("TryEnter while a turn is in flight should fail")
	}

	turn.Done()
	if _, ok := g.TryEnter(context.Background()); !ok {
		t.Fatal("TryEnter after Done should succeed")
	}
}

func TestGate_DoneIsIdempotent(t *testing.T) {
	t.Parallel()
	g := session.NewGate()

	turn, ok := g.TryEnter(context.Background())
	if !ok {
		t.Fatal("TryEnter failed")
	}
	turn.Done()
	turn.Done()
	turn.Done()

	// A double release would panic inside the semaphore; reaching here with
	// a reusable gate is the proof.
	if _, ok := g.TryEnter(context.Background()); !ok {
		t.Fatal("gate should be reusable after repeated Done calls")
	}
}

func TestGate_InterruptCancelsTurnContext(t *testing.T) {
	t.Parallel()
	g := session.NewGate()

	turn, ok := g.TryEnter(context.Background())
	if !ok {
		t.Fatal("TryEnter failed")
	}
	if !g.Interrupt() {
		t.Fatal("Interrupt with an active turn should report true")
	}

	select {
	case <-turn.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("turn context not cancelled after Interrupt")
	}

	// Interrupt does not release the gate; the turn still owns it until
	// its goroutines observe cancellation and call Done.
	if _, ok := g.TryEnter(context.Background()); ok {
		t.Fatal("gate should stay held until the interrupted turn calls Done")
	}
	turn.Done()
	if _, ok := g.TryEnter(context.Background()); !ok {
		t.Fatal("gate should be free after the interrupted turn finished")
	}
}

func TestGate_InterruptIdle(t *testing.T) {
	t.Parallel()
	g := session.NewGate()
	if g.Interrupt() {
		t.Error("Interrupt with no active turn should report false")
	}
}

func TestGate_Active(t *testing.T) {
	t.Parallel()
	g := session.NewGate()
	if g.Active() {
		t.Error("new gate should be idle")
	}
	turn, _ := g.TryEnter(context.Background())
	if !g.Active() {
		t.Error("gate should be active while a turn is in flight")
	}
	turn.Done()
	if g.Active() {
		t.Error("gate should be idle after Done")
	}
}
