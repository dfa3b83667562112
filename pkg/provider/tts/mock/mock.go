// Package mock provides a test double for tts.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/ariabot/aria/pkg/provider/tts"
)

// Compile-time check that *Provider satisfies [tts.Provider].
var _ tts.Provider = (*Provider)(nil)

// Provider is a configurable tts.Provider mock that records every text it
// was asked to synthesise.
type Provider struct {
	mu sync.Mutex

	// SynthesizeFunc, when set, handles Synthesize calls. Otherwise Result
	// and Err are returned.
	SynthesizeFunc func(ctx context.Context, text string, voice tts.VoiceProfile) (tts.Audio, error)

	// Result is returned when SynthesizeFunc is nil.
	Result tts.Audio

	// Err is returned when SynthesizeFunc is nil.
	Err error

	// Texts records every text passed to Synthesize, in call order.
	Texts []string
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile) (tts.Audio, error) {
	p.mu.Lock()
	p.Texts = append(p.Texts, text)
	fn := p.SynthesizeFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, voice)
	}
	return p.Result, p.Err
}

// Calls returns the number of recorded synthesis requests.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Texts)
}
