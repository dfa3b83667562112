// Package stt defines the Provider interface for speech-to-text backends.
//
// The voice pipeline segments utterances itself (silence-gated capture), so
// transcription is modelled as a batch call: one finished WAV artifact in,
// one transcript out. Streaming partials are deliberately out of scope.
//
// Implementations must be safe for concurrent use — multiple speakers may
// finish utterances at the same time.
package stt

import (
	"context"
	"io"
	"time"
)

// Transcript is the result of transcribing one finished utterance.
type Transcript struct {
	// Text is the recognised text. May be empty for pure-noise audio.
	Text string

	// Duration is the audio length as reported by the backend, when
	// available. Zero means the backend did not report it; callers should
	// fall back to the locally computed capture duration.
	Duration time.Duration
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe reads a complete WAV file from r and returns its transcript.
	// Returns an error on any transport or decoding failure; the caller
	// treats every failure as recoverable.
	Transcribe(ctx context.Context, r io.Reader) (Transcript, error)
}
