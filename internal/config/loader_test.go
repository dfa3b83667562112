package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ariabot/aria/internal/config"
)

const validYAML = `
discord:
  token: bot-token
listen:
  triggers: [aria]
providers:
  llm:
    name: openai
    api_key: key
  stt:
    name: whisper
    base_url: http://localhost:8080
  tts:
    name: elevenlabs
    api_key: key
    voice_id: voice-1
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader returned error: %v", err)
	}
	if cfg.Discord.Token != "bot-token" {
		t.Errorf("Discord.Token = %q, want %q", cfg.Discord.Token, "bot-token")
	}
	if got := cfg.Providers.TTS.VoiceID; got != "voice-1" {
		t.Errorf("Providers.TTS.VoiceID = %q, want %q", got, "voice-1")
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader returned error: %v", err)
	}
	if cfg.Listen.SilenceWindow != time.Second {
		t.Errorf("Listen.SilenceWindow = %s, want 1s", cfg.Listen.SilenceWindow)
	}
	if cfg.Listen.MinUtterance != 2*time.Second {
		t.Errorf("Listen.MinUtterance = %s, want 2s", cfg.Listen.MinUtterance)
	}
	if cfg.Chat.MemorySize != config.DefaultMemorySize {
		t.Errorf("Chat.MemorySize = %d, want %d", cfg.Chat.MemorySize, config.DefaultMemorySize)
	}
	if cfg.Chat.Volume != 1.0 {
		t.Errorf("Chat.Volume = %.2f, want 1.0", cfg.Chat.Volume)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("Server.LogLevel = %q, want info", cfg.Server.LogLevel)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	yaml := validYAML + "\nbogus_field: true\n"
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_SongBinary(t *testing.T) {
	t.Parallel()
	yaml := validYAML + "  song:\n    name: ytdlp\n    binary: /usr/local/bin/yt-dlp\n"
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader returned error: %v", err)
	}
	if got := cfg.Providers.Song.Binary; got != "/usr/local/bin/yt-dlp" {
		t.Errorf("Providers.Song.Binary = %q, want %q", got, "/usr/local/bin/yt-dlp")
	}
}

func TestValidate_MissingToken(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "token: bot-token", "token: \"\"", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing token, got nil")
	}
	if !strings.Contains(err.Error(), "discord.token") {
		t.Errorf("error should mention discord.token, got: %v", err)
	}
}

func TestValidate_MissingTriggers(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "triggers: [aria]", "triggers: []", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for empty triggers, got nil")
	}
	if !strings.Contains(err.Error(), "listen.triggers") {
		t.Errorf("error should mention listen.triggers, got: %v", err)
	}
}

func TestValidate_MissingCorePipeline(t *testing.T) {
	t.Parallel()
	yaml := `
discord:
  token: bot-token
listen:
  triggers: [aria]
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing core providers, got nil")
	}
	for _, want := range []string{"providers.llm", "providers.stt", "providers.tts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_MissingVoiceID(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "    voice_id: voice-1\n", "", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing voice id, got nil")
	}
	if !strings.Contains(err.Error(), "voice_id") {
		t.Errorf("error should mention voice_id, got: %v", err)
	}
}

func TestValidate_VolumeOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := validYAML + "\nchat:\n  volume: 3.5\n"
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range volume, got nil")
	}
	if !strings.Contains(err.Error(), "chat.volume") {
		t.Errorf("error should mention chat.volume, got: %v", err)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	t.Parallel()
	yaml := validYAML + "\nserver:\n  log_level: loud\n"
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}
