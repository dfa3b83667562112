// Package search defines the Provider interface for web search backends.
//
// Search is exposed to users as a spoken question and answered with a spoken
// summary, so the interface is chat-shaped: one query string in, one answer
// string out. Deployments without a search backend use [NewUnavailable] so
// the pipeline can voice a specific refusal instead of failing silently.
package search

import (
	"context"
	"errors"
)

// Sentinel errors describing why search is unavailable. The response layer
// maps each to a distinct spoken refusal.
var (
	// ErrDisabled means search was turned off in the configuration.
	ErrDisabled = errors.New("search: disabled by configuration")

	// ErrMissingCredentials means search is configured but no API key was
	// provided.
	ErrMissingCredentials = errors.New("search: missing credentials")
)

// Provider is the abstraction over any search backend.
type Provider interface {
	// Search answers the query with a short, speakable summary.
	Search(ctx context.Context, query string) (string, error)
}

// Compile-time check that *Unavailable satisfies [Provider].
var _ Provider = (*Unavailable)(nil)

// Unavailable is a Provider that always fails with a fixed reason.
type Unavailable struct {
	reason error
}

// NewUnavailable returns a Provider that fails every query with reason,
// which should be one of the package sentinels.
func NewUnavailable(reason error) *Unavailable {
	return &Unavailable{reason: reason}
}

// Search implements Provider.
func (u *Unavailable) Search(_ context.Context, _ string) (string, error) {
	return "", u.reason
}
