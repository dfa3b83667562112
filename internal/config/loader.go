package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [ApplyDefaults] for fields left unset.
const (
	DefaultSilenceWindow = time.Second
	DefaultMinUtterance  = 2 * time.Second
	DefaultMemorySize    = 10
	DefaultVolume        = 1.0
	DefaultSoundsDir     = "sounds"
	DefaultWorkDir       = "work"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":    {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt":    {"openai", "whisper"},
	"tts":    {"elevenlabs"},
	"vc":     {"elevenlabs"},
	"search": {"openai", "perplexity"},
	"song":   {"ytdlp"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in defaults for fields left unset.
func ApplyDefaults(cfg *Config) {
	if cfg.Listen.SilenceWindow == 0 {
		cfg.Listen.SilenceWindow = DefaultSilenceWindow
	}
	if cfg.Listen.MinUtterance == 0 {
		cfg.Listen.MinUtterance = DefaultMinUtterance
	}
	if cfg.Chat.MemorySize == 0 {
		cfg.Chat.MemorySize = DefaultMemorySize
	}
	if cfg.Chat.Volume == 0 {
		cfg.Chat.Volume = DefaultVolume
	}
	if cfg.Paths.Sounds == "" {
		cfg.Paths.Sounds = DefaultSoundsDir
	}
	if cfg.Paths.Work == "" {
		cfg.Paths.Work = DefaultWorkDir
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}

	if len(cfg.Listen.Triggers) == 0 {
		errs = append(errs, errors.New("listen.triggers must name at least one wake word"))
	}
	for i, t := range cfg.Listen.Triggers {
		if t == "" {
			errs = append(errs, fmt.Errorf("listen.triggers[%d] must not be empty", i))
		}
	}
	if cfg.Listen.SilenceWindow < 0 {
		errs = append(errs, fmt.Errorf("listen.silence_window %s must not be negative", cfg.Listen.SilenceWindow))
	}
	if cfg.Listen.MinUtterance < 0 {
		errs = append(errs, fmt.Errorf("listen.min_utterance %s must not be negative", cfg.Listen.MinUtterance))
	}

	if cfg.Chat.MemorySize < 0 {
		errs = append(errs, fmt.Errorf("chat.memory_size %d must not be negative", cfg.Chat.MemorySize))
	}
	if cfg.Chat.Volume < 0 || cfg.Chat.Volume > 2 {
		errs = append(errs, fmt.Errorf("chat.volume %.2f is out of range [0, 2]", cfg.Chat.Volume))
	}

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("vc", cfg.Providers.VC.Name)
	validateProviderName("search", cfg.Providers.Search.Name)
	validateProviderName("song", cfg.Providers.Song.Name)

	// The core pipeline cannot run without these three.
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm is required"))
	}
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, errors.New("providers.tts is required"))
	}
	if cfg.Providers.TTS.Name != "" && cfg.Providers.TTS.VoiceID == "" {
		errs = append(errs, errors.New("providers.tts.voice_id is required"))
	}

	if cfg.Providers.Search.Name == "" {
		slog.Warn("providers.search is not configured; search questions will be refused")
	}
	if cfg.Providers.Song.Name == "" {
		slog.Warn("providers.song is not configured; the /play command will be unavailable")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
