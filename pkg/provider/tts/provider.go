// Package tts defines the Provider interface for text-to-speech backends.
//
// The response pipeline splits replies into bounded chunks before synthesis
// and plays each finished chunk as one file, so synthesis is modelled as a
// batch call: one text chunk in, one complete PCM buffer out. Chunks are
// synthesised concurrently, so implementations must be safe for concurrent
// use.
package tts

import "context"

// VoiceProfile describes a synthesis voice configuration.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Stability controls synthesis consistency (0.0 to 1.0).
	Stability float64

	// SimilarityBoost controls how closely output matches the voice
	// reference (0.0 to 1.0).
	SimilarityBoost float64
}

// Audio is one fully synthesised chunk of speech.
type Audio struct {
	// PCM holds signed 16-bit little-endian samples.
	PCM []byte

	// SampleRate is the sample rate of PCM in Hz.
	SampleRate int

	// Channels is the channel count of PCM (1 = mono).
	Channels int
}

// Provider is the abstraction over any batch TTS backend.
type Provider interface {
	// Synthesize converts text into speech using the given voice and returns
	// the complete audio. Implementations report the native sample rate and
	// channel count of the returned PCM; resampling for playback is the
	// caller's job.
	Synthesize(ctx context.Context, text string, voice VoiceProfile) (Audio, error)
}
