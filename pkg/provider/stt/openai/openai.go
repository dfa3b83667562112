// Package openai provides an STT provider backed by the OpenAI audio
// transcription API (Whisper).
package openai

import (
	"context"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ariabot/aria/pkg/provider/stt"
)

// defaultModel is the transcription model used when none is configured.
const defaultModel = oai.AudioModelWhisper1

// Compile-time check that *Provider satisfies [stt.Provider].
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the OpenAI transcription endpoint.
type Provider struct {
	client oai.Client
	model  oai.AudioModel
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithModel overrides the transcription model (e.g., "whisper-1",
// "gpt-4o-mini-transcribe").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = oai.AudioModel(model)
	}
}

// New constructs a new OpenAI STT Provider.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	p := &Provider{
		client: oai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe implements stt.Provider. It uploads the WAV audio from r and
// returns the recognised text. The endpoint does not report audio length, so
// Duration is left zero and callers fall back to the capture-side value.
func (p *Provider) Transcribe(ctx context.Context, r io.Reader) (stt.Transcript, error) {
	resp, err := p.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model: p.model,
		File:  oai.File(r, "utterance.wav", "audio/wav"),
	})
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("openai: transcribe: %w", err)
	}
	return stt.Transcript{Text: resp.Text}, nil
}
