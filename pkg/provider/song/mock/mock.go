// Package mock provides a test double for song.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/ariabot/aria/pkg/provider/song"
)

// Compile-time check that *Provider satisfies [song.Provider].
var _ song.Provider = (*Provider)(nil)

// Provider is a configurable song.Provider mock that records every query.
type Provider struct {
	mu sync.Mutex

	// ResolveFunc, when set, handles Resolve calls. Otherwise Result and
	// Err are returned.
	ResolveFunc func(ctx context.Context, query string) (song.Track, error)

	// Result is returned when ResolveFunc is nil.
	Result song.Track

	// Err is returned when ResolveFunc is nil.
	Err error

	// Queries records every query passed to Resolve.
	Queries []string
}

// Resolve implements song.Provider.
func (p *Provider) Resolve(ctx context.Context, query string) (song.Track, error) {
	p.mu.Lock()
	p.Queries = append(p.Queries, query)
	fn := p.ResolveFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	return p.Result, p.Err
}

// Calls returns the number of recorded queries.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Queries)
}
