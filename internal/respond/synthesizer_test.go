package respond

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ariabot/aria/internal/observe"
	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/tts"
	ttsmock "github.com/ariabot/aria/pkg/provider/tts/mock"
	vcmock "github.com/ariabot/aria/pkg/provider/vc/mock"
)

// fakePlayer implements audio.Player and records what was played.
type fakePlayer struct {
	mu    sync.Mutex
	paths []string
}

func (p *fakePlayer) Play(_ context.Context, path string, _ float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	return nil
}

func (p *fakePlayer) PlayCue(context.Context, audio.Cue, float64) error { return nil }

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

func newStore(t *testing.T) *audio.Store {
	t.Helper()
	s, err := audio.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func artifactCount(t *testing.T, store *audio.Store) int {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

var testAudio = tts.Audio{PCM: make([]byte, 2400), SampleRate: 24000, Channels: 1}

func TestSpeak_PlaysEveryChunkAndCleansUp(t *testing.T) {
	t.Parallel()
	provider := &ttsmock.Provider{Result: testAudio}
	player := &fakePlayer{}
	store := newStore(t)
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, nil, store, player, 1.0, nil, nil)

	text := strings.Repeat("word ", 150)
	if err := s.Speak(context.Background(), text); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if got := player.count(); got != 3 {
		t.Errorf("played %d chunks, want 3", got)
	}
	if got := provider.Calls(); got != 3 {
		t.Errorf("synthesised %d chunks, want 3", got)
	}
	if got := artifactCount(t, store); got != 0 {
		t.Errorf("%d artifacts left behind, want 0", got)
	}
}

func TestSpeak_EmptyTextIsNoOp(t *testing.T) {
	t.Parallel()
	provider := &ttsmock.Provider{Result: testAudio}
	player := &fakePlayer{}
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, nil, newStore(t), player, 1.0, nil, nil)

	if err := s.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if provider.Calls() != 0 || player.count() != 0 {
		t.Error("empty text should not reach synthesis or playback")
	}
}

func TestSpeak_AppliesVoiceConversion(t *testing.T) {
	t.Parallel()
	provider := &ttsmock.Provider{Result: testAudio}
	converter := &vcmock.Provider{}
	player := &fakePlayer{}
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, converter, newStore(t), player, 1.0, nil, nil)

	if err := s.Speak(context.Background(), "hello there friend"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if converter.Calls() != 1 {
		t.Errorf("converter called %d times, want 1", converter.Calls())
	}
}

func TestSpeak_SynthesisFailureAbortsSequence(t *testing.T) {
	t.Parallel()
	provider := &ttsmock.Provider{
		SynthesizeFunc: func(_ context.Context, text string, _ tts.VoiceProfile) (tts.Audio, error) {
			if strings.HasPrefix(text, "fail") {
				return tts.Audio{}, errors.New("synthesis backend down")
			}
			return testAudio, nil
		},
	}
	player := &fakePlayer{}
	store := newStore(t)
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, nil, store, player, 1.0, nil, nil)

	// The failing word lands in the second chunk.
	text := strings.Repeat("word ", 60) + "fail " + strings.Repeat("word ", 70)
	err := s.Speak(context.Background(), text)
	if err == nil {
		t.Fatal("Speak should fail when a chunk cannot be synthesised")
	}

	// Whatever was rendered before the failure must be cleaned up.
	if got := artifactCount(t, store); got != 0 {
		t.Errorf("%d artifacts left behind after failure, want 0", got)
	}
}

func TestSpeak_RecordsSynthesisMetrics(t *testing.T) {
	t.Parallel()
	reader := sdkmetric.NewManualReader()
	metrics, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	provider := &ttsmock.Provider{Result: testAudio}
	player := &fakePlayer{}
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, nil, newStore(t), player, 1.0, metrics, nil)

	// Three chunks: three synthesis latencies and three plays.
	if err := s.Speak(context.Background(), strings.Repeat("word ", 150)); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	hist, ok := byName["aria.tts.duration"].Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 {
		t.Fatal("no synthesis latency histogram recorded")
	}
	var samples uint64
	for _, dp := range hist.DataPoints {
		samples += dp.Count
	}
	if samples != 3 {
		t.Errorf("synthesis latency samples = %d, want 3", samples)
	}

	sum, ok := byName["aria.chunks.played"].Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) == 0 {
		t.Fatal("no chunks-played counter recorded")
	}
	if got := sum.DataPoints[0].Value; got != 3 {
		t.Errorf("chunks played = %d, want 3", got)
	}
}

func TestSpeak_CancelledContext(t *testing.T) {
	t.Parallel()
	provider := &ttsmock.Provider{Result: testAudio}
	player := &fakePlayer{}
	s := NewSynthesizer(provider, tts.VoiceProfile{ID: "v"}, nil, newStore(t), player, 1.0, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Speak(ctx, "hello there friend"); err == nil {
		t.Fatal("Speak with a cancelled context should fail")
	}
}
