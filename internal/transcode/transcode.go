// Package transcode converts captured voice audio into the format the
// transcription gateways expect: 48 kHz stereo capture PCM becomes a 16 kHz
// mono WAV artifact.
package transcode

import (
	"errors"
	"fmt"

	"github.com/ariabot/aria/pkg/audio"
)

// ErrConversion is returned when the input audio cannot be converted, for
// example when the capture produced no usable samples.
var ErrConversion = errors.New("transcode: conversion failed")

// Transcoder converts utterance PCM into WAV artifacts.
type Transcoder struct {
	store *audio.Store
}

// New returns a Transcoder writing its artifacts through store.
func New(store *audio.Store) *Transcoder {
	return &Transcoder{store: store}
}

// ToWAV downmixes and resamples the 48 kHz stereo capture PCM and writes it
// as a 16 kHz mono WAV artifact, returning the artifact path. The caller
// removes the artifact after transcription.
func (t *Transcoder) ToWAV(pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", fmt.Errorf("%w: empty capture", ErrConversion)
	}

	mono := audio.StereoToMono(pcm)
	resampled := audio.ResampleMono16(mono, audio.CaptureSampleRate, audio.TranscribeSampleRate)
	if len(resampled) == 0 {
		return "", fmt.Errorf("%w: no samples after resampling", ErrConversion)
	}

	f, err := t.store.Create("utterance", "wav")
	if err != nil {
		return "", fmt.Errorf("transcode: %w", err)
	}
	path := f.Name()
	if err := audio.WriteWAV(f, resampled, audio.TranscribeSampleRate, 1); err != nil {
		f.Close()
		t.store.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if err := f.Close(); err != nil {
		t.store.Remove(path)
		return "", fmt.Errorf("transcode: close artifact: %w", err)
	}
	return path, nil
}
