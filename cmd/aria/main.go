// Command aria is the main entry point for the Aria voice assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ariabot/aria/internal/bot"
	"github.com/ariabot/aria/internal/config"
	"github.com/ariabot/aria/internal/health"
	"github.com/ariabot/aria/internal/observe"
	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/llm"
	"github.com/ariabot/aria/pkg/provider/llm/anyllm"
	oaillm "github.com/ariabot/aria/pkg/provider/llm/openai"
	"github.com/ariabot/aria/pkg/provider/search"
	oaisearch "github.com/ariabot/aria/pkg/provider/search/openai"
	"github.com/ariabot/aria/pkg/provider/song/ytdlp"
	"github.com/ariabot/aria/pkg/provider/stt"
	oaistt "github.com/ariabot/aria/pkg/provider/stt/openai"
	"github.com/ariabot/aria/pkg/provider/stt/whisper"
	"github.com/ariabot/aria/pkg/provider/tts"
	ttseleven "github.com/ariabot/aria/pkg/provider/tts/elevenlabs"
	vceleven "github.com/ariabot/aria/pkg/provider/vc/elevenlabs"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "aria: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "aria: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("aria starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	store, err := audio.NewStore(cfg.Paths.Work)
	if err != nil {
		slog.Error("failed to open artifact store", "err", err)
		return 1
	}
	store.Sweep()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	b, err := bot.New(cfg, providers, store, metrics, logger)
	if err != nil {
		slog.Error("failed to create bot", "err", err)
		return 1
	}
	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", "err", err)
		return 1
	}

	slog.Info("assistant ready — press Ctrl+C to shut down")

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		health.New(
			health.Checker{Name: "discord_gateway", Check: b.Ready},
			health.Checker{Name: "artifact_store", Check: func(context.Context) error {
				_, err := os.Stat(store.Dir())
				return err
			}},
		).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())

		srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}
		g.Go(func() error {
			slog.Info("diagnostics server listening", "addr", cfg.Server.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("diagnostics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		exitCode = 1
	}

	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := b.Stop(shutdownCtx); err != nil {
		slog.Warn("bot shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return exitCode
}

// buildProviders instantiates every provider named in cfg. LLM, STT, and TTS
// are required (Validate enforces their presence); voice conversion, search,
// and song playback are optional capabilities.
func buildProviders(cfg *config.Config) (bot.Providers, error) {
	var ps bot.Providers

	l, err := buildLLM(cfg.Providers.LLM)
	if err != nil {
		return ps, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	ps.LLM = l
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	s, err := buildSTT(cfg.Providers.STT)
	if err != nil {
		return ps, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	ps.STT = s
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	t, voice, err := buildTTS(cfg.Providers.TTS)
	if err != nil {
		return ps, fmt.Errorf("create tts provider %q: %w", cfg.Providers.TTS.Name, err)
	}
	ps.TTS = t
	ps.Voice = voice
	slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name, "voice", voice.ID)

	if entry := cfg.Providers.VC; entry.Name != "" {
		var opts []vceleven.Option
		if entry.Model != "" {
			opts = append(opts, vceleven.WithModel(entry.Model))
		}
		vcp, err := vceleven.New(entry.APIKey, entry.VoiceID, opts...)
		if err != nil {
			return ps, fmt.Errorf("create vc provider %q: %w", entry.Name, err)
		}
		ps.VoiceConv = vcp
		slog.Info("provider created", "kind", "vc", "name", entry.Name)
	}

	ps.Search = buildSearch(cfg.Providers.Search)

	if entry := cfg.Providers.Song; entry.Name != "" {
		var opts []ytdlp.Option
		if entry.Binary != "" {
			opts = append(opts, ytdlp.WithBinary(entry.Binary))
		}
		sp, err := ytdlp.New(cfg.Paths.Work, opts...)
		if err != nil {
			return ps, fmt.Errorf("create song provider %q: %w", entry.Name, err)
		}
		ps.Song = sp
		slog.Info("provider created", "kind", "song", "name", entry.Name)
	}

	return ps, nil
}

func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	if entry.Name == "openai" && entry.BaseURL == "" {
		var opts []oaillm.Option
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	}

	// Everything else goes through the any-llm-go multi-provider backend.
	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, entry.Model, opts...)
}

func buildSTT(entry config.ProviderEntry) (stt.Provider, error) {
	switch entry.Name {
	case "whisper":
		return whisper.New(entry.BaseURL)
	default:
		var opts []oaistt.Option
		if entry.Model != "" {
			opts = append(opts, oaistt.WithModel(entry.Model))
		}
		return oaistt.New(entry.APIKey, opts...)
	}
}

func buildTTS(entry config.ProviderEntry) (tts.Provider, tts.VoiceProfile, error) {
	var opts []ttseleven.Option
	if entry.Model != "" {
		opts = append(opts, ttseleven.WithModel(entry.Model))
	}
	p, err := ttseleven.New(entry.APIKey, opts...)
	if err != nil {
		return nil, tts.VoiceProfile{}, err
	}
	return p, tts.VoiceProfile{ID: entry.VoiceID}, nil
}

// buildSearch never fails: an unconfigured or misconfigured search entry
// degrades to a provider that voices the reason when asked.
func buildSearch(entry config.ProviderEntry) search.Provider {
	if entry.Name == "" {
		return search.NewUnavailable(search.ErrDisabled)
	}
	if entry.APIKey == "" {
		slog.Warn("search provider configured without api_key — search disabled")
		return search.NewUnavailable(search.ErrMissingCredentials)
	}

	var opts []oaisearch.Option
	if entry.BaseURL != "" {
		opts = append(opts, oaisearch.WithBaseURL(entry.BaseURL))
	}
	if entry.Model != "" {
		opts = append(opts, oaisearch.WithModel(entry.Model))
	}
	p, err := oaisearch.New(entry.APIKey, opts...)
	if err != nil {
		slog.Warn("search provider creation failed — search disabled", "err", err)
		return search.NewUnavailable(search.ErrMissingCredentials)
	}
	slog.Info("provider created", "kind", "search", "name", entry.Name)
	return p
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
