package observe_test

import (
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/ariabot/aria/internal/observe"
)

func TestNewMetrics_AllInstrumentsCreated(t *testing.T) {
	t.Parallel()
	mp := sdkmetric.NewMeterProvider()
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	if m.STTDuration == nil || m.LLMDuration == nil || m.TTSDuration == nil || m.TurnDuration == nil {
		t.Error("a latency histogram is nil")
	}
	if m.Utterances == nil || m.TurnsGranted == nil || m.TurnsRejected == nil || m.TurnsInterrupted == nil {
		t.Error("a turn counter is nil")
	}
	if m.ChunksPlayed == nil || m.SequenceTimeouts == nil || m.ProviderErrors == nil {
		t.Error("a pipeline counter is nil")
	}
	if m.ActiveCaptures == nil || m.ActiveSessions == nil {
		t.Error("a gauge is nil")
	}
}
