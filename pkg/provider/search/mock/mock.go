// Package mock provides a test double for search.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/ariabot/aria/pkg/provider/search"
)

// Compile-time check that *Provider satisfies [search.Provider].
var _ search.Provider = (*Provider)(nil)

// Provider is a configurable search.Provider mock that records every query.
type Provider struct {
	mu sync.Mutex

	// SearchFunc, when set, handles Search calls. Otherwise Result and Err
	// are returned.
	SearchFunc func(ctx context.Context, query string) (string, error)

	// Result is returned when SearchFunc is nil.
	Result string

	// Err is returned when SearchFunc is nil.
	Err error

	// Queries records every query passed to Search.
	Queries []string
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string) (string, error) {
	p.mu.Lock()
	p.Queries = append(p.Queries, query)
	fn := p.SearchFunc
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
