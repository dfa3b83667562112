// Package observe provides the observability primitives for Aria:
// OpenTelemetry metric instruments for the voice pipeline and a Prometheus
// exporter bridge so they can be scraped from the standard /metrics
// endpoint.
//
// Tests should use [NewMetrics] with a custom [metric.MeterProvider] to
// avoid cross-test pollution.
package observe

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all Aria metrics.
const meterName = "github.com/ariabot/aria"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// LLMDuration tracks reply generation latency.
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks per-chunk synthesis latency.
	TTSDuration metric.Float64Histogram

	// TurnDuration tracks the full utterance-to-playback turn latency.
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// Utterances counts finished utterances. Use with attribute:
	//   attribute.String("outcome", "handled"|"dropped"|"ignored")
	Utterances metric.Int64Counter

	// TurnsGranted counts utterances that won the response gate.
	TurnsGranted metric.Int64Counter

	// TurnsRejected counts utterances dropped because a turn was in flight.
	TurnsRejected metric.Int64Counter

	// TurnsInterrupted counts stop requests that cancelled an active turn.
	TurnsInterrupted metric.Int64Counter

	// ChunksPlayed counts reply chunks played back.
	ChunksPlayed metric.Int64Counter

	// SequenceTimeouts counts replies abandoned by the playback sequencer.
	SequenceTimeouts metric.Int64Counter

	// ProviderErrors counts gateway failures. Use with attribute:
	//   attribute.String("kind", "stt"|"llm"|"tts"|"vc"|"search"|"song")
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveCaptures tracks the number of speakers currently buffering.
	ActiveCaptures metric.Int64UpDownCounter

	// ActiveSessions tracks the number of joined voice channels.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// Noop returns a [Metrics] whose instruments discard every measurement.
// Components accept it as the default when no meter provider is wired.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("aria.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("aria.llm.duration",
		metric.WithDescription("Latency of reply generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("aria.tts.duration",
		metric.WithDescription("Latency of per-chunk speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("aria.turn.duration",
		metric.WithDescription("Latency of a full utterance-to-playback turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Utterances, err = m.Int64Counter("aria.utterances",
		metric.WithDescription("Finished utterances by outcome."),
	); err != nil {
		return nil, err
	}
	if met.TurnsGranted, err = m.Int64Counter("aria.turns.granted",
		metric.WithDescription("Utterances that won the response gate."),
	); err != nil {
		return nil, err
	}
	if met.TurnsRejected, err = m.Int64Counter("aria.turns.rejected",
		metric.WithDescription("Utterances dropped because a turn was in flight."),
	); err != nil {
		return nil, err
	}
	if met.TurnsInterrupted, err = m.Int64Counter("aria.turns.interrupted",
		metric.WithDescription("Stop requests that cancelled an active turn."),
	); err != nil {
		return nil, err
	}
	if met.ChunksPlayed, err = m.Int64Counter("aria.chunks.played",
		metric.WithDescription("Reply chunks played back."),
	); err != nil {
		return nil, err
	}
	if met.SequenceTimeouts, err = m.Int64Counter("aria.sequence.timeouts",
		metric.WithDescription("Replies abandoned by the playback sequencer."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("aria.provider.errors",
		metric.WithDescription("Gateway failures by kind."),
	); err != nil {
		return nil, err
	}

	// Gauges.
	if met.ActiveCaptures, err = m.Int64UpDownCounter("aria.captures.active",
		metric.WithDescription("Speakers currently buffering audio."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("aria.sessions.active",
		metric.WithDescription("Joined voice channels."),
	); err != nil {
		return nil, err
	}

	return met, nil
}
