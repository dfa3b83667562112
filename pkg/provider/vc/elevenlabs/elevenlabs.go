// Package elevenlabs provides a voice conversion provider backed by the
// ElevenLabs speech-to-speech REST API. The input PCM is wrapped in a WAV
// container, uploaded as multipart form data, and the converted audio comes
// back as raw PCM in the requested output format.
package elevenlabs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/vc"
)

const (
	endpointFmt  = "https://api.elevenlabs.io/v1/speech-to-speech/%s?output_format=pcm_%d"
	defaultModel = "eleven_multilingual_sts_v2"

	defaultTimeout = 60 * time.Second
)

// Compile-time check that *Provider satisfies [vc.Provider].
var _ vc.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithModel sets the speech-to-speech model ID.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements vc.Provider against the ElevenLabs API.
type Provider struct {
	apiKey     string
	voiceID    string
	model      string
	httpClient *http.Client
}

// New creates a Provider that converts audio into the voice identified by
// voiceID. Both apiKey and voiceID must be non-empty.
func New(apiKey, voiceID string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	if voiceID == "" {
		return nil, errors.New("elevenlabs: voiceID must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		voiceID:    voiceID,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Convert implements vc.Provider. The returned PCM keeps the input sample
// rate and is mono 16-bit like the input.
func (p *Provider) Convert(ctx context.Context, pcm []byte, sampleRate int) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("audio", "input.wav")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build multipart: %w", err)
	}
	if err := audio.WriteWAV(fw, pcm, sampleRate, 1); err != nil {
		return nil, fmt.Errorf("elevenlabs: encode input: %w", err)
	}
	if err := mw.WriteField("model_id", p.model); err != nil {
		return nil, fmt.Errorf("elevenlabs: write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("elevenlabs: close multipart: %w", err)
	}

	url := fmt.Sprintf(endpointFmt, p.voiceID, sampleRate)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: convert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: convert: unexpected status %d", resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read converted audio: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("elevenlabs: conversion produced no audio")
	}
	return out, nil
}
