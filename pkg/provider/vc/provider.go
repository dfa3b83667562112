// Package vc defines the Provider interface for voice conversion backends.
//
// Voice conversion re-voices already synthesised speech into a target voice
// while preserving timing and intonation. The pipeline applies it as an
// optional post-processing step after text-to-speech, one chunk at a time,
// so conversion is modelled as a batch call.
//
// Implementations must be safe for concurrent use.
package vc

import "context"

// Provider is the abstraction over any voice conversion backend.
type Provider interface {
	// Convert re-voices the given mono 16-bit PCM audio and returns converted
	// PCM at the same sample rate. sampleRate is the rate of pcm in Hz.
	Convert(ctx context.Context, pcm []byte, sampleRate int) ([]byte, error)
}
