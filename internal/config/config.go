// Package config provides the configuration schema and loader for the Aria
// voice assistant.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Aria.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Listen    ListenConfig    `yaml:"listen"`
	Chat      ChatConfig      `yaml:"chat"`
	Providers ProvidersConfig `yaml:"providers"`
	Paths     PathsConfig     `yaml:"paths"`
	Server    ServerConfig    `yaml:"server"`
}

// DiscordConfig holds the bot credentials.
type DiscordConfig struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`

	// GuildID scopes slash command registration to one guild when set.
	// Empty registers commands globally.
	GuildID string `yaml:"guild_id"`
}

// ListenConfig tunes utterance capture and addressing.
type ListenConfig struct {
	// Triggers are the wake words. An utterance must contain one of them to
	// be handled unless free-listen mode is active.
	Triggers []string `yaml:"triggers"`

	// FuzzyTriggers enables approximate trigger matching so common STT
	// misspellings of the wake word still address the assistant.
	FuzzyTriggers bool `yaml:"fuzzy_triggers"`

	// IgnorePhrases lists transcripts dropped outright, such as the filler
	// tokens Whisper emits for silence.
	IgnorePhrases []string `yaml:"ignore_phrases"`

	// SilenceWindow is how long a speaker must stay quiet before their
	// utterance is considered finished.
	SilenceWindow time.Duration `yaml:"silence_window"`

	// MinUtterance is the minimum audio length worth transcribing. Shorter
	// captures are discarded.
	MinUtterance time.Duration `yaml:"min_utterance"`
}

// ChatConfig tunes the conversational reply generation.
type ChatConfig struct {
	// SystemPrompt is the persona prompt seeded into every history.
	SystemPrompt string `yaml:"system_prompt"`

	// MemorySize caps the number of exchanges remembered per speaker.
	MemorySize int `yaml:"memory_size"`

	// Volume scales playback loudness (0.0 to 2.0, 1.0 = unchanged).
	Volume float64 `yaml:"volume"`
}

// ProvidersConfig declares which backend to use for each capability.
type ProvidersConfig struct {
	LLM    ProviderEntry `yaml:"llm"`
	STT    ProviderEntry `yaml:"stt"`
	TTS    ProviderEntry `yaml:"tts"`
	VC     ProviderEntry `yaml:"vc"`
	Search ProviderEntry `yaml:"search"`
	Song   ProviderEntry `yaml:"song"`
}

// ProviderEntry is the common configuration block shared by all provider
// kinds. Name selects the implementation; the rest parameterises it.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "openai", "whisper").
	// Empty disables the capability.
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// VoiceID is the provider-specific voice identifier. Only meaningful
	// for the tts and vc entries.
	VoiceID string `yaml:"voice_id"`

	// Binary overrides the path of a local tool the provider shells out
	// to. Only meaningful for the song entry.
	Binary string `yaml:"binary"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// Sounds is the directory containing the cue sound WAV files.
	Sounds string `yaml:"sounds"`

	// Work is the directory for transient audio artifacts (captures,
	// transcoded WAVs, synthesised chunks, downloaded songs). Swept on
	// startup.
	Work string `yaml:"work"`
}

// ServerConfig holds the diagnostics HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the TCP address for the health and metrics endpoints
	// (e.g., ":8080"). Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}
