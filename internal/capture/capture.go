// Package capture turns the continuous per-speaker audio stream into
// discrete utterances. Each speaker gets their own capture unit that buffers
// decoded PCM frames; once the speaker stays quiet for the configured
// silence window, the buffered audio is emitted as one finished utterance
// and the unit re-arms for the next one.
package capture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ariabot/aria/pkg/audio"
)

// Utterance is one finished stretch of speech from a single speaker.
type Utterance struct {
	// UserID identifies the speaker.
	UserID string

	// PCM holds the captured audio, 48 kHz stereo 16-bit little-endian.
	PCM []byte

	// Duration is the audio length computed from the PCM size.
	Duration time.Duration
}

// Handler receives finished utterances. It is called from the capture
// unit's goroutine and must not block; hand the utterance off and return.
type Handler func(u Utterance)

// Manager owns one capture unit per active speaker.
type Manager struct {
	window  time.Duration
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	units  map[string]*unit
	closed bool
}

// NewManager creates a Manager that finishes an utterance after window of
// silence and passes it to handler.
func NewManager(window time.Duration, handler Handler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		window:  window,
		handler: handler,
		logger:  logger,
		units:   make(map[string]*unit),
	}
}

// Feed delivers one decoded PCM frame for userID. The first frame from an
// unknown speaker starts a new capture unit.
func (m *Manager) Feed(userID string, pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	u, ok := m.units[userID]
	if !ok {
		u = newUnit(userID, m.window, m.handler, m.logger)
		m.units[userID] = u
	}
	m.mu.Unlock()

	// Copy the frame; the caller reuses its decode buffer.
	frame := make([]byte, len(pcm))
	copy(frame, pcm)
	u.feed(frame)
}

// CloseUser stops the capture unit for userID, discarding any buffered
// audio. No-op for unknown speakers.
func (m *Manager) CloseUser(userID string) {
	m.mu.Lock()
	u := m.units[userID]
	delete(m.units, userID)
	m.mu.Unlock()
	if u != nil {
		u.close()
	}
}

// Close stops all capture units and rejects further frames. Buffered audio
// is discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	units := m.units
	m.units = make(map[string]*unit)
	m.mu.Unlock()

	for _, u := range units {
		u.close()
	}
}

// unit is the capture state machine for one speaker.
type unit struct {
	userID  string
	window  time.Duration
	handler Handler
	logger  *slog.Logger

	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func newUnit(userID string, window time.Duration, handler Handler, logger *slog.Logger) *unit {
	u := &unit{
		userID:  userID,
		window:  window,
		handler: handler,
		logger:  logger,
		frames:  make(chan []byte, 64),
		done:    make(chan struct{}),
	}
	go u.run()
	return u
}

func (u *unit) feed(frame []byte) {
	select {
	case u.frames <- frame:
	case <-u.done:
	default:
		// Frame queue full. Dropping a 20 ms frame is preferable to
		// blocking the voice receive loop.
		u.logger.Warn("capture frame dropped", "user", u.userID)
	}
}

func (u *unit) close() {
	u.once.Do(func() { close(u.done) })
}

// run buffers frames until the silence window elapses with no new frame,
// then emits the buffer as an utterance and waits for the next frame.
func (u *unit) run() {
	timer := time.NewTimer(u.window)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	var buf []byte
	for {
		select {
		case frame := <-u.frames:
			buf = append(buf, frame...)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(u.window)
		case <-timer.C:
			if len(buf) > 0 {
				u.emit(buf)
				buf = nil
			}
		case <-u.done:
			return
		}
	}
}

func (u *unit) emit(buf []byte) {
	dur := audio.PCMDuration(len(buf), audio.CaptureSampleRate, 2)
	u.logger.Debug("utterance finished", "user", u.userID, "duration", dur)
	u.handler(Utterance{UserID: u.userID, PCM: buf, Duration: dur})
}
