package capture_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ariabot/aria/internal/capture"
)

// collector records emitted utterances for assertions.
type collector struct {
	mu   sync.Mutex
	got  []capture.Utterance
	cond chan struct{}
}

func newCollector() *collector {
	return &collector{cond: make(chan struct{}, 16)}
}

func (c *collector) handle(u capture.Utterance) {
	c.mu.Lock()
	c.got = append(c.got, u)
	c.mu.Unlock()
	c.cond <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) []capture.Utterance {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		if len(c.got) >= n {
			out := make([]capture.Utterance, len(c.got))
			copy(out, c.got)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		select {
		case <-c.cond:
		case <-deadline:
			t.Fatalf("timed out waiting for %d utterances", n)
		}
	}
}

func TestManager_EmitsAfterSilence(t *testing.T) {
	t.Parallel()
	c := newCollector()
	m := capture.NewManager(30*time.Millisecond, c.handle, nil)
	defer m.Close()

	frame := make([]byte, 3840) // one 20 ms 48 kHz stereo frame
	m.Feed("alice", frame)
	m.Feed("alice", frame)

	got := c.wait(t, 1)
	if got[0].UserID != "alice" {
		t.Errorf("UserID = %q, want alice", got[0].UserID)
	}
	if len(got[0].PCM) != 2*len(frame) {
		t.Errorf("PCM length = %d, want %d", len(got[0].PCM), 2*len(frame))
	}
	if got[0].Duration != 40*time.Millisecond {
		t.Errorf("Duration = %s, want 40ms", got[0].Duration)
	}
}

func TestManager_SilenceSplitsUtterances(t *testing.T) {
	t.Parallel()
	c := newCollector()
	m := capture.NewManager(25*time.Millisecond, c.handle, nil)
	defer m.Close()

	frame := make([]byte, 1920)
	m.Feed("bob", frame)
	c.wait(t, 1)
	m.Feed("bob", frame)
	got := c.wait(t, 2)

	if len(got) != 2 {
		t.Fatalf("got %d utterances, want 2", len(got))
	}
	for i, u := range got {
		if len(u.PCM) != len(frame) {
			t.Errorf("utterance %d PCM length = %d, want %d", i, len(u.PCM), len(frame))
		}
	}
}

func TestManager_SpeakersAreIndependent(t *testing.T) {
	t.Parallel()
	c := newCollector()
	m := capture.NewManager(30*time.Millisecond, c.handle, nil)
	defer m.Close()

	m.Feed("alice", make([]byte, 1000))
	m.Feed("bob", make([]byte, 2000))

	got := c.wait(t, 2)
	sizes := map[string]int{}
	for _, u := range got {
		sizes[u.UserID] = len(u.PCM)
	}
	if sizes["alice"] != 1000 || sizes["bob"] != 2000 {
		t.Errorf("per-speaker sizes = %v, want alice:1000 bob:2000", sizes)
	}
}

func TestManager_CloseDiscardsBufferedAudio(t *testing.T) {
	t.Parallel()
	c := newCollector()
	m := capture.NewManager(time.Hour, c.handle, nil)

	m.Feed("alice", make([]byte, 1000))
	m.Close()

	time.Sleep(50 * time.Millisecond)
	c.mu.Lock()
	n := len(c.got)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("got %d utterances after Close, want 0", n)
	}

	// Frames after Close are rejected.
	m.Feed("alice", make([]byte, 1000))
}

func TestManager_CloseUser(t *testing.T) {
	t.Parallel()
	c := newCollector()
	m := capture.NewManager(time.Hour, c.handle, nil)
	defer m.Close()

	m.Feed("alice", make([]byte, 1000))
	m.CloseUser("alice")

	time.Sleep(50 * time.Millisecond)
	c.mu.Lock()
	n := len(c.got)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("got %d utterances after CloseUser, want 0", n)
	}
}
