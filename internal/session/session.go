// Package session holds the per-voice-channel state of the assistant: the
// join modes, the per-speaker chat histories, the transcript log, and the
// single-flight turn gate.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ariabot/aria/pkg/provider/llm"
)

// Modes are the listening modes chosen when joining a voice channel.
type Modes struct {
	// Silent suppresses all cue sounds except the command acknowledgement.
	Silent bool

	// FreeListen handles every utterance without requiring a wake word.
	FreeListen bool

	// TranscribeLog records every transcript and posts the log to the text
	// channel when the assistant leaves.
	TranscribeLog bool
}

// TranscriptEntry is one logged utterance.
type TranscriptEntry struct {
	Speaker string
	Text    string
	At      time.Time
}

// History keeps bounded chat histories keyed by speaker (or thread) ID.
// Every history starts from the same system prompt; old exchanges are
// trimmed once the limit is exceeded.
type History struct {
	mu           sync.Mutex
	systemPrompt string
	limit        int
	byKey        map[string][]llm.Message
}

// NewHistory creates a History that remembers at most limit exchanges
// (user plus assistant message pairs) per key.
func NewHistory(systemPrompt string, limit int) *History {
	return &History{
		systemPrompt: systemPrompt,
		limit:        limit,
		byKey:        make(map[string][]llm.Message),
	}
}

// SystemPrompt returns the persona prompt shared by all histories.
func (h *History) SystemPrompt() string {
	return h.systemPrompt
}

// Messages returns a copy of the conversation for key, oldest first. The
// system prompt is not included; callers pass it separately to the LLM.
func (h *History) Messages(key string) []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.byKey[key]
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append records one completed exchange for key and trims the history to
// the configured limit.
func (h *History) Append(key, userText, assistantText string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.byKey[key],
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: assistantText},
	)
	if max := h.limit * 2; max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	h.byKey[key] = msgs
}

// Reset forgets all conversations.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byKey = make(map[string][]llm.Message)
}

// Session is the state of one active voice channel connection.
type Session struct {
	// GuildID and ChannelID identify the joined voice channel.
	GuildID   string
	ChannelID string

	// TextChannelID is where the transcript log is posted on leave.
	TextChannelID string

	// Modes are fixed at join time.
	Modes Modes

	// History holds the per-speaker chat histories.
	History *History

	// Gate serialises response turns for this session.
	Gate *Gate

	mu         sync.Mutex
	transcript []TranscriptEntry
}

// New creates a Session for the given voice channel.
func New(guildID, channelID, textChannelID string, modes Modes, history *History) *Session {
	return &Session{
		GuildID:       guildID,
		ChannelID:     channelID,
		TextChannelID: textChannelID,
		Modes:         modes,
		History:       history,
		Gate:          NewGate(),
	}
}

// LogTranscript records an utterance for the transcript log. No-op unless
// transcribe mode is active.
func (s *Session) LogTranscript(speaker, text string) {
	if !s.Modes.TranscribeLog {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, TranscriptEntry{
		Speaker: speaker,
		Text:    text,
		At:      time.Now(),
	})
}

// Transcript renders the recorded log as one text block, oldest first.
// Returns "" when nothing was recorded.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transcript) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range s.transcript {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.At.Format("15:04:05"), e.Speaker, e.Text)
	}
	return b.String()
}

// Reset clears all conversational state: chat histories and the transcript
// log. The join modes and the gate are untouched.
func (s *Session) Reset() {
	s.History.Reset()
	s.mu.Lock()
	s.transcript = nil
	s.mu.Unlock()
}

// Manager tracks the active session per guild. The assistant joins at most
// one voice channel per guild.
type Manager struct {
	mu      sync.Mutex
	byGuild map[string]*Session
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{byGuild: make(map[string]*Session)}
}

// Put registers the session for its guild, replacing any previous one.
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byGuild[s.GuildID] = s
}

// Get returns the session for guildID, or nil when not joined there.
func (m *Manager) Get(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byGuild[guildID]
}

// Remove deletes the session for guildID and returns it, or nil.
func (m *Manager) Remove(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byGuild[guildID]
	delete(m.byGuild, guildID)
	return s
}
