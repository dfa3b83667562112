package respond

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ariabot/aria/internal/observe"
	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/tts"
	"github.com/ariabot/aria/pkg/provider/vc"
)

// Synthesizer renders reply text into played-back speech. Chunks are
// synthesised concurrently; playback stays strictly ordered through the
// [Sequencer].
type Synthesizer struct {
	tts     tts.Provider
	voice   tts.VoiceProfile
	vc      vc.Provider // optional, nil disables conversion
	store   *audio.Store
	player  audio.Player
	volume  float64
	metrics *observe.Metrics
	logger  *slog.Logger
}

// NewSynthesizer wires a Synthesizer. converter may be nil to skip the
// voice conversion pass; nil metrics discard all measurements.
func NewSynthesizer(provider tts.Provider, voice tts.VoiceProfile, converter vc.Provider, store *audio.Store, player audio.Player, volume float64, metrics *observe.Metrics, logger *slog.Logger) *Synthesizer {
	if metrics == nil {
		metrics = observe.Noop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		tts:     provider,
		voice:   voice,
		vc:      converter,
		store:   store,
		player:  player,
		volume:  volume,
		metrics: metrics,
		logger:  logger,
	}
}

// Speak chunks text, synthesises every chunk concurrently, and plays the
// results in order. It returns when the full reply was played, the sequence
// failed, or ctx was cancelled. Leftover artifacts are always removed.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	chunks := Chunk(text, DefaultMaxWords)
	if len(chunks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	seq := NewSequencer()
	var wg sync.WaitGroup

	// Cleanup waits for the render goroutines so no artifact can appear
	// after the drain.
	defer func() {
		cancel()
		wg.Wait()
		for _, path := range seq.Drain() {
			s.store.Remove(path)
		}
	}()

	wg.Add(len(chunks))
	for i, chunk := range chunks {
		go func(i int, chunk string) {
			defer wg.Done()
			path, err := s.renderChunk(ctx, chunk)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("chunk synthesis failed", "chunk", i, "error", err)
				}
				// One failed chunk sinks the whole reply; playing the
				// remainder would skip a piece mid-sentence.
				cancel()
				return
			}
			seq.Put(i, path)
		}(i, chunk)
	}

	err := seq.Run(ctx, len(chunks), s.playChunk)
	if err != nil {
		return fmt.Errorf("respond: speak: %w", err)
	}
	return nil
}

// renderChunk synthesises one chunk, optionally converts the voice, and
// writes the playback-ready 48 kHz stereo WAV artifact.
func (s *Synthesizer) renderChunk(ctx context.Context, chunk string) (string, error) {
	start := time.Now()
	a, err := s.tts.Synthesize(ctx, chunk, s.voice)
	s.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	pcm := a.PCM
	if a.Channels == 2 {
		pcm = audio.StereoToMono(pcm)
	}
	if s.vc != nil {
		pcm, err = s.vc.Convert(ctx, pcm, a.SampleRate)
		if err != nil {
			return "", fmt.Errorf("convert voice: %w", err)
		}
	}

	pcm = audio.ResampleMono16(pcm, a.SampleRate, audio.PlaybackSampleRate)
	pcm = audio.MonoToStereo(pcm)

	f, err := s.store.Create("chunk", "wav")
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := audio.WriteWAV(f, pcm, audio.PlaybackSampleRate, 2); err != nil {
		f.Close()
		s.store.Remove(path)
		return "", fmt.Errorf("encode chunk: %w", err)
	}
	if err := f.Close(); err != nil {
		s.store.Remove(path)
		return "", fmt.Errorf("close chunk artifact: %w", err)
	}
	return path, nil
}

// playChunk plays one artifact and removes it afterwards.
func (s *Synthesizer) playChunk(ctx context.Context, path string) error {
	defer s.store.Remove(path)
	if err := s.player.Play(ctx, path, s.volume); err != nil {
		return fmt.Errorf("play chunk: %w", err)
	}
	s.metrics.ChunksPlayed.Add(ctx, 1)
	return nil
}
