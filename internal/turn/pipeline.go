// Package turn orchestrates one conversational turn: a finished utterance
// goes through transcription, addressing, intent classification, and the
// matching handler, guarded by the session's single-flight gate.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ariabot/aria/internal/alarm"
	"github.com/ariabot/aria/internal/capture"
	"github.com/ariabot/aria/internal/observe"
	"github.com/ariabot/aria/internal/respond"
	"github.com/ariabot/aria/internal/router"
	"github.com/ariabot/aria/internal/session"
	"github.com/ariabot/aria/internal/transcode"
	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/llm"
	"github.com/ariabot/aria/pkg/provider/search"
	"github.com/ariabot/aria/pkg/provider/song"
	"github.com/ariabot/aria/pkg/provider/stt"
)

// Spoken fallback lines. Kept short so failures do not turn into lectures.
const (
	sayLLMFailed        = "Sorry, I couldn't come up with a response."
	saySearchDisabled   = "Sorry, web search is turned off."
	saySearchNoAccess   = "Sorry, web search isn't set up. I have nothing to search with."
	saySearchFailed     = "Sorry, the search didn't work out."
	sayTimerParseFailed = "Sorry, I didn't catch how long to set it for."
	sayCancelNone       = "There's nothing to cancel."
	sayCancelAmbiguous  = "There's more than one pending. Tell me which one to cancel."
	sayCancelNotFound   = "I couldn't find that one."
	saySongUnavailable  = "Sorry, I can't play music right now."
	saySongFailed       = "Sorry, I couldn't find that song."
	sayReset            = "Okay, I've forgotten our conversation."
)

// Config carries the tunables the pipeline needs.
type Config struct {
	// MinUtterance is the shortest capture worth transcribing.
	MinUtterance time.Duration

	// Volume scales all playback.
	Volume float64
}

// Deps are the collaborators of a Pipeline. All fields except Song, Search,
// SpeakerName, and OnLeave are required.
type Deps struct {
	STT        stt.Provider
	LLM        llm.Provider
	Search     search.Provider
	Song       song.Provider
	Router     *router.Router
	Alarms     *alarm.Scheduler
	Transcoder *transcode.Transcoder
	Store      *audio.Store
	Speaker    *respond.Synthesizer
	Player     audio.Player
	Session    *session.Session
	Metrics    *observe.Metrics
	Logger     *slog.Logger

	// SpeakerName resolves a user ID to a display name for the transcript
	// log. Nil falls back to the raw ID.
	SpeakerName func(userID string) string

	// OnLeave is invoked when the user asks the assistant to leave the
	// voice channel. Nil ignores the request.
	OnLeave func()
}

// Pipeline handles finished utterances for one voice session.
type Pipeline struct {
	cfg Config
	d   Deps
}

// New wires a Pipeline.
func New(cfg Config, d Deps) *Pipeline {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.SpeakerName == nil {
		d.SpeakerName = func(id string) string { return id }
	}
	return &Pipeline{cfg: cfg, d: d}
}

// HandleUtterance runs one utterance through the full pipeline. It is
// called from the capture layer and blocks until the turn is finished, so
// callers should run it in its own goroutine.
func (p *Pipeline) HandleUtterance(ctx context.Context, u capture.Utterance) {
	log := p.d.Logger.With("user", u.UserID)

	if u.Duration < p.cfg.MinUtterance {
		log.Debug("utterance too short", "duration", u.Duration)
		p.countUtterance(ctx, "dropped")
		return
	}

	text, ok := p.transcribe(ctx, u, log)
	if !ok {
		return
	}

	cleaned, addressed := p.d.Router.Prepare(text, p.d.Session.Modes.FreeListen)
	if !addressed {
		log.Debug("utterance not addressed to assistant", "text", text)
		p.countUtterance(ctx, "ignored")
		return
	}

	intent := p.d.Router.Classify(cleaned)
	log.Info("utterance classified", "intent", intent.String(), "text", cleaned)

	// Stop is handled before the gate: its whole point is reaching the
	// turn that currently holds it.
	if intent == router.IntentStop {
		if p.d.Session.Gate.Interrupt() {
			log.Info("active turn interrupted")
			p.d.Metrics.TurnsInterrupted.Add(ctx, 1)
		}
		p.countUtterance(ctx, "handled")
		return
	}

	turn, ok := p.d.Session.Gate.TryEnter(ctx)
	if !ok {
		log.Info("utterance dropped, turn already in flight")
		p.d.Metrics.TurnsRejected.Add(ctx, 1)
		p.countUtterance(ctx, "dropped")
		return
	}
	defer turn.Done()
	p.d.Metrics.TurnsGranted.Add(ctx, 1)
	p.countUtterance(ctx, "handled")

	start := time.Now()
	p.dispatch(turn.Context(), intent, cleaned, u.UserID, log)
	p.d.Metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
}

// transcribe converts the capture to a WAV artifact, runs STT, and logs
// the transcript when transcribe mode is active.
func (p *Pipeline) transcribe(ctx context.Context, u capture.Utterance, log *slog.Logger) (string, bool) {
	wavPath, err := p.d.Transcoder.ToWAV(u.PCM)
	if err != nil {
		log.Error("transcode failed", "error", err)
		p.countUtterance(ctx, "dropped")
		return "", false
	}
	defer p.d.Store.Remove(wavPath)

	f, err := os.Open(wavPath)
	if err != nil {
		log.Error("open transcode artifact failed", "error", err)
		p.countUtterance(ctx, "dropped")
		return "", false
	}
	start := time.Now()
	tr, err := p.d.STT.Transcribe(ctx, f)
	f.Close()
	p.d.Metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		log.Error("transcription failed", "error", err)
		p.providerError(ctx, "stt")
		p.countUtterance(ctx, "dropped")
		return "", false
	}
	if tr.Text == "" {
		p.countUtterance(ctx, "ignored")
		return "", false
	}

	p.d.Session.LogTranscript(p.d.SpeakerName(u.UserID), tr.Text)
	return tr.Text, true
}

// dispatch runs the handler for the classified intent under the turn
// context.
func (p *Pipeline) dispatch(ctx context.Context, intent router.Intent, text, userID string, log *slog.Logger) {
	switch intent {
	case router.IntentChat:
		p.playCue(ctx, audio.CueUnderstood)
		p.handleChat(ctx, text, userID, log)
	case router.IntentSearch:
		p.playCue(ctx, audio.CueUnderstood)
		p.handleSearch(ctx, text, log)
	case router.IntentTimerSet:
		p.playCue(ctx, audio.CueCommand)
		p.handleTimerSet(ctx, text, log)
	case router.IntentTimerCancel:
		p.playCue(ctx, audio.CueCommand)
		p.handleTimerCancel(ctx, text, log)
	case router.IntentTimerList:
		p.playCue(ctx, audio.CueCommand)
		p.speak(ctx, p.d.Alarms.List(), log)
	case router.IntentReset:
		p.playCue(ctx, audio.CueCommand)
		p.d.Session.Reset()
		log.Info("session state reset")
		p.speak(ctx, sayReset, log)
	case router.IntentLeave:
		p.playCue(ctx, audio.CueCommand)
		if p.d.OnLeave != nil {
			p.d.OnLeave()
		}
	case router.IntentSong:
		p.playCue(ctx, audio.CueCommand)
		p.handleSong(ctx, text, log)
	}
}

func (p *Pipeline) handleChat(ctx context.Context, text, userID string, log *slog.Logger) {
	req := llm.CompletionRequest{
		SystemPrompt: p.d.Session.History.SystemPrompt(),
		Messages: append(p.d.Session.History.Messages(userID),
			llm.Message{Role: llm.RoleUser, Content: text}),
	}
	start := time.Now()
	reply, err := p.d.LLM.Complete(ctx, req)
	p.d.Metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("completion failed", "error", err)
		p.providerError(ctx, "llm")
		p.speak(ctx, sayLLMFailed, log)
		return
	}

	p.d.Session.History.Append(userID, text, reply)
	p.playCue(ctx, audio.CueResult)
	p.speak(ctx, reply, log)
}

func (p *Pipeline) handleSearch(ctx context.Context, text string, log *slog.Logger) {
	if p.d.Search == nil {
		p.speak(ctx, saySearchDisabled, log)
		return
	}
	answer, err := p.d.Search.Search(ctx, text)
	switch {
	case errors.Is(err, search.ErrDisabled):
		p.speak(ctx, saySearchDisabled, log)
		return
	case errors.Is(err, search.ErrMissingCredentials):
		p.speak(ctx, saySearchNoAccess, log)
		return
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		log.Error("search failed", "error", err)
		p.providerError(ctx, "search")
		p.speak(ctx, saySearchFailed, log)
		return
	}
	p.playCue(ctx, audio.CueResult)
	p.speak(ctx, answer, log)
}

func (p *Pipeline) handleTimerSet(ctx context.Context, text string, log *slog.Logger) {
	e, err := p.d.Alarms.Set(text)
	if err != nil {
		log.Info("timer request not understood", "text", text, "error", err)
		p.speak(ctx, sayTimerParseFailed, log)
		return
	}
	log.Info("timer set", "kind", string(e.Kind), "duration", e.Duration)
	p.speak(ctx, fmt.Sprintf("Okay, %s set for %s.", e.Kind, SpeakDuration(e.Duration)), log)
}

func (p *Pipeline) handleTimerCancel(ctx context.Context, text string, log *slog.Logger) {
	e, err := p.d.Alarms.Cancel(text)
	switch {
	case errors.Is(err, alarm.ErrNone):
		p.speak(ctx, sayCancelNone, log)
		return
	case errors.Is(err, alarm.ErrAmbiguous):
		p.speak(ctx, sayCancelAmbiguous+" "+p.d.Alarms.List(), log)
		return
	case err != nil:
		p.speak(ctx, sayCancelNotFound, log)
		return
	}
	log.Info("timer cancelled", "kind", string(e.Kind))
	p.speak(ctx, fmt.Sprintf("Okay, I've cancelled the %s for %s.", e.Kind, SpeakDuration(e.Duration)), log)
}

func (p *Pipeline) handleSong(ctx context.Context, text string, log *slog.Logger) {
	if p.d.Song == nil {
		p.speak(ctx, saySongUnavailable, log)
		return
	}
	track, err := p.d.Song.Resolve(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("song resolution failed", "error", err)
		p.providerError(ctx, "song")
		p.speak(ctx, saySongFailed, log)
		return
	}
	defer p.d.Store.Remove(track.Path)

	log.Info("playing song", "title", track.Title)
	p.speak(ctx, "Playing "+track.Title+".", log)
	if err := p.d.Player.Play(ctx, track.Path, p.cfg.Volume); err != nil && ctx.Err() == nil {
		log.Error("song playback failed", "error", err)
	}
}

// AnnounceExpiry plays the cue for an expired timer or alarm and speaks the
// announcement. Expiries bypass the gate: they are time-critical and the
// cue player serialises output anyway.
func (p *Pipeline) AnnounceExpiry(ctx context.Context, e alarm.Entry) {
	cue := audio.CueTimer
	if e.Kind == alarm.KindAlarm {
		cue = audio.CueAlarm
	}
	p.playCue(ctx, cue)
	p.speak(ctx, fmt.Sprintf("Your %s for %s is up.", e.Kind, SpeakDuration(e.Duration)), p.d.Logger)
}

// speak renders text through the synthesizer and records sequencer metrics.
func (p *Pipeline) speak(ctx context.Context, text string, log *slog.Logger) {
	if err := p.d.Speaker.Speak(ctx, text); err != nil {
		if errors.Is(err, respond.ErrSequenceTimeout) {
			p.d.Metrics.SequenceTimeouts.Add(ctx, 1)
		}
		if ctx.Err() == nil {
			log.Error("playback failed", "error", err)
		}
	}
}

// playCue plays a feedback sound, tolerating failure: a missing cue file
// must never break the turn.
func (p *Pipeline) playCue(ctx context.Context, cue audio.Cue) {
	if err := p.d.Player.PlayCue(ctx, cue, p.cfg.Volume); err != nil && ctx.Err() == nil {
		p.d.Logger.Warn("cue playback failed", "cue", string(cue), "error", err)
	}
}

func (p *Pipeline) countUtterance(ctx context.Context, outcome string) {
	p.d.Metrics.Utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (p *Pipeline) providerError(ctx context.Context, kind string) {
	p.d.Metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// SpeakDuration renders a duration the way a person would say it.
func SpeakDuration(d time.Duration) string {
	say := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return say(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return say(int(d/time.Minute), "minute")
	default:
		return say(int(d/time.Second), "second")
	}
}
