// Package mock provides a test double for stt.Provider.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/ariabot/aria/pkg/provider/stt"
)

// Compile-time check that *Provider satisfies [stt.Provider].
var _ stt.Provider = (*Provider)(nil)

// Provider is a configurable stt.Provider mock.
type Provider struct {
	mu sync.Mutex

	// TranscribeFunc, when set, handles Transcribe calls. Otherwise Result
	// and Err are returned.
	TranscribeFunc func(ctx context.Context, r io.Reader) (stt.Transcript, error)

	// Result is returned when TranscribeFunc is nil.
	Result stt.Transcript

	// Err is returned when TranscribeFunc is nil.
	Err error

	calls int
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, r io.Reader) (stt.Transcript, error) {
	p.mu.Lock()
	p.calls++
	fn := p.TranscribeFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, r)
	}
	return p.Result, p.Err
}

// Calls returns how many times Transcribe was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
