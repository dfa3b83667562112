// Package bot hosts the assistant on Discord: the gateway session, the
// slash commands, the voice channel lifecycle, and the text-channel chat
// fallback. All voice intelligence lives in the internal pipeline packages;
// this package only adapts Discord events to them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/ariabot/aria/internal/alarm"
	"github.com/ariabot/aria/internal/capture"
	"github.com/ariabot/aria/internal/config"
	"github.com/ariabot/aria/internal/observe"
	"github.com/ariabot/aria/internal/respond"
	"github.com/ariabot/aria/internal/router"
	"github.com/ariabot/aria/internal/session"
	"github.com/ariabot/aria/internal/transcode"
	"github.com/ariabot/aria/internal/turn"
	"github.com/ariabot/aria/pkg/audio"
	"github.com/ariabot/aria/pkg/provider/llm"
	"github.com/ariabot/aria/pkg/provider/search"
	"github.com/ariabot/aria/pkg/provider/song"
	"github.com/ariabot/aria/pkg/provider/stt"
	"github.com/ariabot/aria/pkg/provider/tts"
	"github.com/ariabot/aria/pkg/provider/vc"
)

// Providers bundles the capability gateways the bot hands to each voice
// session. Search, VoiceConv, and Song may be nil; the pipeline voices a
// refusal instead.
type Providers struct {
	STT       stt.Provider
	LLM       llm.Provider
	TTS       tts.Provider
	Voice     tts.VoiceProfile
	VoiceConv vc.Provider
	Search    search.Provider
	Song      song.Provider
}

// Bot is the Discord front end.
type Bot struct {
	cfg       *config.Config
	providers Providers
	store     *audio.Store
	metrics   *observe.Metrics
	logger    *slog.Logger
	router    *router.Router

	dg       *discordgo.Session
	sessions *session.Manager

	mu            sync.Mutex
	voices        map[string]*guildVoice
	textHistories map[string]*session.History
	commands      []*discordgo.ApplicationCommand
}

// guildVoice is everything alive while the bot sits in one voice channel.
type guildVoice struct {
	sess     *session.Session
	link     *voiceLink
	captures *capture.Manager
	alarms   *alarm.Scheduler
	pipeline *turn.Pipeline
	ctx      context.Context
	cancel   context.CancelFunc
}

// New wires a Bot. Start must be called before it does anything.
func New(cfg *config.Config, providers Providers, store *audio.Store, metrics *observe.Metrics, logger *slog.Logger) (*Bot, error) {
	rt, err := router.New(router.Config{
		Triggers:      cfg.Listen.Triggers,
		IgnorePhrases: cfg.Listen.IgnorePhrases,
		Fuzzy:         cfg.Listen.FuzzyTriggers,
	})
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	return &Bot{
		cfg:       cfg,
		providers: providers,
		store:     store,
		metrics:   metrics,
		logger:    logger,
		router:    rt,
		sessions:  session.NewManager(),
		voices:    make(map[string]*guildVoice),
	}, nil
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("bot: create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	dg.AddHandler(b.handleInteraction)
	dg.AddHandler(b.handleMessage)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("bot: open gateway: %w", err)
	}
	b.dg = dg

	if err := b.registerCommands(); err != nil {
		dg.Close()
		return err
	}
	b.logger.Info("connected to discord", "user", dg.State.User.Username)
	return nil
}

// Stop leaves every voice channel, removes the slash commands, and closes
// the gateway connection.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	guildIDs := make([]string, 0, len(b.voices))
	for id := range b.voices {
		guildIDs = append(guildIDs, id)
	}
	b.mu.Unlock()
	for _, id := range guildIDs {
		b.leaveGuild(id)
	}

	var errs []error
	if b.dg != nil {
		for _, cmd := range b.commands {
			if err := b.dg.ApplicationCommandDelete(b.dg.State.User.ID, b.cfg.Discord.GuildID, cmd.ID); err != nil {
				errs = append(errs, fmt.Errorf("bot: delete command %s: %w", cmd.Name, err))
			}
		}
		if err := b.dg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("bot: close gateway: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Ready reports whether the gateway connection is up. Used as a readiness
// check.
func (b *Bot) Ready(_ context.Context) error {
	if b.dg == nil || b.dg.State == nil || b.dg.State.User == nil {
		return errors.New("bot: gateway not connected")
	}
	return nil
}

// joinVoice connects to the given voice channel and assembles the session
// pipeline around it.
func (b *Bot) joinVoice(guildID, channelID, textChannelID string, modes session.Modes) error {
	b.mu.Lock()
	_, exists := b.voices[guildID]
	b.mu.Unlock()
	if exists {
		return errors.New("bot: already in a voice channel on this guild")
	}

	vconn, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, false)
	if err != nil {
		return fmt.Errorf("bot: join voice channel: %w", err)
	}

	sess := session.New(guildID, channelID, textChannelID, modes,
		session.NewHistory(b.cfg.Chat.SystemPrompt, b.cfg.Chat.MemorySize))
	ctx, cancel := context.WithCancel(context.Background())
	gv := &guildVoice{sess: sess, ctx: ctx, cancel: cancel}

	gv.captures = capture.NewManager(b.cfg.Listen.SilenceWindow, func(u capture.Utterance) {
		b.metrics.ActiveCaptures.Add(gv.ctx, 1)
		go func() {
			defer b.metrics.ActiveCaptures.Add(gv.ctx, -1)
			gv.pipeline.HandleUtterance(gv.ctx, u)
		}()
	}, b.logger)

	gv.link = newVoiceLink(vconn, gv.captures, b.cfg.Paths.Sounds, modes.Silent, b.logger)
	gv.alarms = alarm.NewScheduler(func(e alarm.Entry) {
		go gv.pipeline.AnnounceExpiry(gv.ctx, e)
	})

	speaker := respond.NewSynthesizer(b.providers.TTS, b.providers.Voice, b.providers.VoiceConv,
		b.store, gv.link, b.cfg.Chat.Volume, b.metrics, b.logger)

	gv.pipeline = turn.New(
		turn.Config{MinUtterance: b.cfg.Listen.MinUtterance, Volume: b.cfg.Chat.Volume},
		turn.Deps{
			STT:         b.providers.STT,
			LLM:         b.providers.LLM,
			Search:      b.providers.Search,
			Song:        b.providers.Song,
			Router:      b.router,
			Alarms:      gv.alarms,
			Transcoder:  transcode.New(b.store),
			Store:       b.store,
			Speaker:     speaker,
			Player:      gv.link,
			Session:     sess,
			Metrics:     b.metrics,
			Logger:      b.logger.With("guild", guildID),
			SpeakerName: func(userID string) string { return b.memberName(guildID, userID) },
			OnLeave:     func() { go b.leaveGuild(guildID) },
		},
	)

	b.mu.Lock()
	b.voices[guildID] = gv
	b.mu.Unlock()
	b.sessions.Put(sess)
	b.metrics.ActiveSessions.Add(ctx, 1)
	b.logger.Info("joined voice channel", "guild", guildID, "channel", channelID,
		"silent", modes.Silent, "free_listen", modes.FreeListen, "transcribe", modes.TranscribeLog)
	return nil
}

// leaveGuild tears down the voice session for guildID and posts the
// transcript log when transcribe mode was active.
func (b *Bot) leaveGuild(guildID string) {
	b.mu.Lock()
	gv := b.voices[guildID]
	delete(b.voices, guildID)
	b.mu.Unlock()
	if gv == nil {
		return
	}

	gv.sess.Gate.Interrupt()
	gv.captures.Close()
	gv.alarms.Close()
	gv.cancel()
	if err := gv.link.close(); err != nil {
		b.logger.Warn("voice disconnect failed", "guild", guildID, "error", err)
	}

	if transcript := gv.sess.Transcript(); transcript != "" {
		b.postTranscript(gv.sess.TextChannelID, transcript)
	}

	b.sessions.Remove(guildID)
	b.metrics.ActiveSessions.Add(context.Background(), -1)
	b.logger.Info("left voice channel", "guild", guildID)
}

// postTranscript sends the transcript log to the text channel, split to fit
// Discord's message length limit.
func (b *Bot) postTranscript(channelID, transcript string) {
	const maxLen = 1900
	for len(transcript) > 0 {
		chunk := transcript
		if len(chunk) > maxLen {
			cut := maxLen
			for i := maxLen; i > 0; i-- {
				if transcript[i] == '\n' {
					cut = i + 1
					break
				}
			}
			chunk = transcript[:cut]
		}
		transcript = transcript[len(chunk):]
		if _, err := b.dg.ChannelMessageSend(channelID, "```\n"+chunk+"\n```"); err != nil {
			b.logger.Error("post transcript failed", "channel", channelID, "error", err)
			return
		}
	}
}

// memberName resolves a display name for the transcript log.
func (b *Bot) memberName(guildID, userID string) string {
	member, err := b.dg.State.Member(guildID, userID)
	if err != nil {
		member, err = b.dg.GuildMember(guildID, userID)
	}
	if err != nil || member == nil || member.User == nil {
		return userID
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

// voiceChannelOf finds the voice channel the user currently sits in.
func (b *Bot) voiceChannelOf(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("bot: guild state unavailable: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", errors.New("bot: user is not in a voice channel")
}

// handleMessage answers text-channel mentions with the same chat model as
// the voice pipeline, keyed by channel so threads hold their own history.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || s.State.User == nil {
		return
	}
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return
	}

	text := m.Content
	for _, mention := range []string{"<@" + s.State.User.ID + ">", "<@!" + s.State.User.ID + ">"} {
		text = strings.ReplaceAll(text, mention, "")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	history := b.threadHistory(m.GuildID)
	key := "thread:" + m.ChannelID
	req := llm.CompletionRequest{
		SystemPrompt: b.cfg.Chat.SystemPrompt,
		Messages: append(history.Messages(key),
			llm.Message{Role: llm.RoleUser, Content: text}),
	}
	reply, err := b.providers.LLM.Complete(context.Background(), req)
	if err != nil {
		b.logger.Error("thread completion failed", "channel", m.ChannelID, "error", err)
		return
	}
	history.Append(key, text, reply)

	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		b.logger.Error("thread reply failed", "channel", m.ChannelID, "error", err)
	}
}

// threadHistory returns the active session's history when the bot is in a
// voice channel on the guild, so text and voice share memory; otherwise a
// per-guild standalone history.
func (b *Bot) threadHistory(guildID string) *session.History {
	if sess := b.sessions.Get(guildID); sess != nil {
		return sess.History
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.textHistories == nil {
		b.textHistories = make(map[string]*session.History)
	}
	h, ok := b.textHistories[guildID]
	if !ok {
		h = session.NewHistory(b.cfg.Chat.SystemPrompt, b.cfg.Chat.MemorySize)
		b.textHistories[guildID] = h
	}
	return h
}

// playCommandCue plays the command acknowledgement in the guild's voice
// channel, when joined.
func (b *Bot) playCommandCue(guildID string) {
	b.mu.Lock()
	gv := b.voices[guildID]
	b.mu.Unlock()
	if gv == nil {
		return
	}
	if err := gv.link.PlayCue(gv.ctx, audio.CueCommand, b.cfg.Chat.Volume); err != nil {
		b.logger.Warn("cue playback failed", "guild", guildID, "error", err)
	}
}
