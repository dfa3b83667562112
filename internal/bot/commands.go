package bot

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"

	"github.com/ariabot/aria/internal/session"
)

const helpText = "I'm a voice assistant. Use `/join` and call me by name in " +
	"your voice channel to chat, set timers and alarms, search the web, or " +
	"play a song. `/join mode:silent` skips the cue sounds, `mode:free` " +
	"answers without the wake word, and `mode:transcribe` posts a transcript " +
	"log when I leave. `/reset` clears my memory and `/leave` sends me away."

var commandDefs = []*discordgo.ApplicationCommand{
	{
		Name:        "join",
		Description: "Join your current voice channel and start listening",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "mode",
				Description: "Listening mode",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "silent", Value: "silent"},
					{Name: "free", Value: "free"},
					{Name: "transcribe", Value: "transcribe"},
				},
			},
		},
	},
	{
		Name:        "leave",
		Description: "Leave the voice channel",
	},
	{
		Name:        "reset",
		Description: "Forget the conversation so far",
	},
	{
		Name:        "play",
		Description: "Play a song in the voice channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Song name or URL",
				Required:    true,
			},
		},
	},
	{
		Name:        "help",
		Description: "Show what the assistant can do",
	},
}

// registerCommands creates the slash commands, scoped to the configured
// guild when one is set.
func (b *Bot) registerCommands() error {
	for _, def := range commandDefs {
		cmd, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, b.cfg.Discord.GuildID, def)
		if err != nil {
			return fmt.Errorf("bot: register command %s: %w", def.Name, err)
		}
		b.commands = append(b.commands, cmd)
	}
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	var reply string
	switch data.Name {
	case "join":
		reply = b.cmdJoin(i, data)
	case "leave":
		reply = b.cmdLeave(i)
	case "reset":
		reply = b.cmdReset(i)
	case "play":
		reply = b.cmdPlay(i, data)
	case "help":
		reply = helpText
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction response failed", "command", data.Name, "error", err)
	}
}

func (b *Bot) cmdJoin(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) string {
	if i.Member == nil || i.Member.User == nil {
		return "This command only works inside a server."
	}

	var modes session.Modes
	for _, opt := range data.Options {
		if opt.Name == "mode" {
			switch opt.StringValue() {
			case "silent":
				modes.Silent = true
			case "free":
				modes.FreeListen = true
			case "transcribe":
				modes.TranscribeLog = true
			}
		}
	}

	channelID, err := b.voiceChannelOf(i.GuildID, i.Member.User.ID)
	if err != nil {
		return "Join a voice channel first, then ask me again."
	}
	if err := b.joinVoice(i.GuildID, channelID, i.ChannelID, modes); err != nil {
		b.logger.Error("voice join failed", "guild", i.GuildID, "error", err)
		return "I couldn't join that voice channel."
	}
	return "Joined. Say my name and I'll answer."
}

func (b *Bot) cmdLeave(i *discordgo.InteractionCreate) string {
	if b.sessions.Get(i.GuildID) == nil {
		return "I'm not in a voice channel here."
	}
	b.playCommandCue(i.GuildID)
	go b.leaveGuild(i.GuildID)
	return "Leaving. See you around."
}

func (b *Bot) cmdReset(i *discordgo.InteractionCreate) string {
	sess := b.sessions.Get(i.GuildID)
	if sess != nil {
		sess.Reset()
	}
	b.mu.Lock()
	if h := b.textHistories[i.GuildID]; h != nil {
		h.Reset()
	}
	b.mu.Unlock()
	if sess != nil {
		b.playCommandCue(i.GuildID)
	}
	return "Memory cleared."
}

func (b *Bot) cmdPlay(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) string {
	if b.providers.Song == nil {
		return "Song playback isn't set up."
	}
	b.mu.Lock()
	gv := b.voices[i.GuildID]
	b.mu.Unlock()
	if gv == nil {
		return "Ask me to `/join` your voice channel first."
	}

	var query string
	for _, opt := range data.Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}
	if query == "" {
		return "Tell me what to play."
	}

	go func() {
		track, err := b.providers.Song.Resolve(gv.ctx, query)
		if err != nil {
			b.logger.Error("song resolve failed", "guild", i.GuildID, "query", query, "error", err)
			return
		}
		defer os.Remove(track.Path)
		if err := gv.link.Play(gv.ctx, track.Path, b.cfg.Chat.Volume); err != nil {
			if gv.ctx.Err() == nil {
				b.logger.Error("song playback failed", "guild", i.GuildID, "title", track.Title, "error", err)
			}
		}
	}()
	return fmt.Sprintf("Looking for %q.", query)
}
