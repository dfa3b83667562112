// Package mock provides a test double for llm.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/ariabot/aria/pkg/provider/llm"
)

// Compile-time check that *Provider satisfies [llm.Provider].
var _ llm.Provider = (*Provider)(nil)

// Provider is a configurable llm.Provider mock that records every request.
type Provider struct {
	mu sync.Mutex

	// CompleteFunc, when set, handles Complete calls. Otherwise Result and
	// Err are returned.
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)

	// Result is the reply returned when CompleteFunc is nil.
	Result string

	// Err is the error returned when CompleteFunc is nil.
	Err error

	// Requests records every request passed to Complete.
	Requests []llm.CompletionRequest
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	fn := p.CompleteFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return p.Result, p.Err
}

// Calls returns the number of recorded requests.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}
