// Package ytdlp provides a song provider that shells out to the yt-dlp
// binary. Queries are resolved through YouTube search and the best audio
// stream is downloaded and transcoded to a 48 kHz stereo WAV that the
// player can stream directly.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ariabot/aria/pkg/provider/song"
)

const defaultBinary = "yt-dlp"

// Compile-time check that *Provider satisfies [song.Provider].
var _ song.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithBinary overrides the yt-dlp binary path.
func WithBinary(path string) Option {
	return func(p *Provider) {
		p.binary = path
	}
}

// Provider implements song.Provider by invoking yt-dlp.
type Provider struct {
	binary string
	dir    string
}

// New creates a Provider that downloads tracks into dir.
func New(dir string, opts ...Option) (*Provider, error) {
	if dir == "" {
		return nil, errors.New("ytdlp: dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ytdlp: create download dir: %w", err)
	}
	p := &Provider{binary: defaultBinary, dir: dir}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Resolve implements song.Provider. The query is resolved via yt-dlp's
// "ytsearch1:" prefix, so free-form text and direct URLs both work.
func (p *Provider) Resolve(ctx context.Context, query string) (song.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return song.Track{}, errors.New("ytdlp: query must not be empty")
	}

	target := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		target = "ytsearch1:" + query
	}
	out := filepath.Join(p.dir, "song-"+uuid.NewString()+".wav")

	// --print after_move:title makes yt-dlp emit the resolved title on
	// stdout once the download finished.
	cmd := exec.CommandContext(ctx, p.binary,
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 48000 -ac 2",
		"--print", "after_move:title",
		"--no-simulate",
		"--output", strings.TrimSuffix(out, ".wav")+".%(ext)s",
		target,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return song.Track{}, fmt.Errorf("ytdlp: download %q: %w: %s", query, err, strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(out); err != nil {
		return song.Track{}, fmt.Errorf("ytdlp: download %q: output missing: %w", query, err)
	}

	title := strings.TrimSpace(stdout.String())
	if title == "" {
		title = query
	}
	return song.Track{Title: title, Path: out}, nil
}
