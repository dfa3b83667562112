// Package mock provides a test double for vc.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/ariabot/aria/pkg/provider/vc"
)

// Compile-time check that *Provider satisfies [vc.Provider].
var _ vc.Provider = (*Provider)(nil)

// Provider is a configurable vc.Provider mock.
type Provider struct {
	mu sync.Mutex

	// ConvertFunc, when set, handles Convert calls. Otherwise the input PCM
	// is echoed back together with Err.
	ConvertFunc func(ctx context.Context, pcm []byte, sampleRate int) ([]byte, error)

	// Err is returned when ConvertFunc is nil.
	Err error

	calls int
}

// Convert implements vc.Provider.
func (p *Provider) Convert(ctx context.Context, pcm []byte, sampleRate int) ([]byte, error) {
	p.mu.Lock()
	p.calls++
	fn := p.ConvertFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, pcm, sampleRate)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return pcm, nil
}

// Calls returns how many times Convert was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
