// Package song defines the Provider interface for resolving play requests
// into local audio files.
package song

import "context"

// Track is a resolved song ready for playback.
type Track struct {
	// Title is the human-readable track title, spoken back to the user.
	Title string

	// Path is the local filesystem path of the downloaded audio.
	Path string
}

// Provider is the abstraction over any song resolution backend.
type Provider interface {
	// Resolve turns a free-form query ("play bohemian rhapsody") into a
	// downloaded Track. The caller owns the file at Track.Path and removes
	// it after playback.
	Resolve(ctx context.Context, query string) (Track, error)
}
