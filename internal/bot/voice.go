package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ariabot/aria/internal/capture"
	"github.com/ariabot/aria/pkg/audio"
)

// Compile-time check that *voiceLink satisfies [audio.Player].
var _ audio.Player = (*voiceLink)(nil)

// voiceLink binds one joined voice channel: it demuxes incoming Opus
// packets by SSRC into the capture manager and plays WAV artifacts back
// through the connection. Playback is serialised so two sounds never
// interleave on the wire.
type voiceLink struct {
	vc       *discordgo.VoiceConnection
	captures *capture.Manager
	sounds   string
	silent   bool
	logger   *slog.Logger

	playMu sync.Mutex

	ssrcMu   sync.RWMutex
	ssrcUser map[uint32]string

	done      chan struct{}
	closeOnce sync.Once
}

// newVoiceLink starts the receive loop on an already-joined connection.
func newVoiceLink(vc *discordgo.VoiceConnection, captures *capture.Manager, soundsDir string, silent bool, logger *slog.Logger) *voiceLink {
	l := &voiceLink{
		vc:       vc,
		captures: captures,
		sounds:   soundsDir,
		silent:   silent,
		logger:   logger,
		ssrcUser: make(map[uint32]string),
		done:     make(chan struct{}),
	}
	vc.AddHandler(l.handleSpeakingUpdate)
	go l.recvLoop()
	return l
}

// handleSpeakingUpdate records the SSRC to user mapping Discord announces
// before a user's first packet.
func (l *voiceLink) handleSpeakingUpdate(_ *discordgo.VoiceConnection, su *discordgo.VoiceSpeakingUpdate) {
	if su.UserID == "" {
		return
	}
	l.ssrcMu.Lock()
	l.ssrcUser[uint32(su.SSRC)] = su.UserID
	l.ssrcMu.Unlock()
}

// userForSSRC resolves the speaker behind an SSRC. Packets arriving before
// the speaking update are attributed to the SSRC itself so capture state
// is not lost.
func (l *voiceLink) userForSSRC(ssrc uint32) string {
	l.ssrcMu.RLock()
	defer l.ssrcMu.RUnlock()
	if id, ok := l.ssrcUser[ssrc]; ok {
		return id
	}
	return strconv.FormatUint(uint64(ssrc), 10)
}

// recvLoop reads Opus packets, decodes them per SSRC, and feeds the PCM to
// the capture manager.
func (l *voiceLink) recvLoop() {
	decoders := make(map[uint32]*opusDecoder)

	for {
		select {
		case <-l.done:
			return
		case pkt, ok := <-l.vc.OpusRecv:
			if !ok {
				return
			}
			if pkt == nil {
				continue
			}

			dec, exists := decoders[pkt.SSRC]
			if !exists {
				var err error
				dec, err = newOpusDecoder()
				if err != nil {
					l.logger.Error("create opus decoder failed", "ssrc", pkt.SSRC, "error", err)
					continue
				}
				decoders[pkt.SSRC] = dec
			}

			pcm, err := dec.decode(pkt.Opus)
			if err != nil {
				l.logger.Warn("opus decode error", "ssrc", pkt.SSRC, "error", err)
				continue
			}
			l.captures.Feed(l.userForSSRC(pkt.SSRC), pcm)
		}
	}
}

// close stops the receive loop and disconnects the voice connection.
func (l *voiceLink) close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.vc.Disconnect()
	})
	return err
}

// Play implements audio.Player. The artifact at path must be a 16-bit PCM
// WAV; it is converted to 48 kHz stereo and streamed as 20 ms Opus frames.
func (l *voiceLink) Play(ctx context.Context, path string, volume float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("bot: open playback artifact: %w", err)
	}
	pcm, rate, channels, err := audio.ReadWAV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("bot: load playback artifact %q: %w", path, err)
	}

	if channels == 2 {
		pcm = audio.StereoToMono(pcm)
	}
	pcm = audio.ResampleMono16(pcm, rate, audio.PlaybackSampleRate)
	pcm = audio.MonoToStereo(pcm)
	pcm = audio.ScaleVolume(pcm, volume)

	return l.stream(ctx, pcm)
}

// PlayCue implements audio.Player. Cue files live in the sounds directory
// as "<cue>.wav". Silent sessions suppress every cue except the command
// acknowledgement.
func (l *voiceLink) PlayCue(ctx context.Context, cue audio.Cue, volume float64) error {
	if l.silent && cue != audio.CueCommand {
		return nil
	}
	path := filepath.Join(l.sounds, string(cue)+".wav")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("bot: cue sound %q unavailable: %w", cue, err)
	}
	return l.Play(ctx, path, volume)
}

// stream sends 48 kHz stereo PCM as paced Opus frames. The last partial
// frame is zero-padded.
func (l *voiceLink) stream(ctx context.Context, pcm []byte) error {
	l.playMu.Lock()
	defer l.playMu.Unlock()

	enc, err := newOpusEncoder()
	if err != nil {
		return err
	}

	if err := l.vc.Speaking(true); err != nil {
		l.logger.Warn("speaking notification failed", "error", err)
	}
	defer func() {
		if err := l.vc.Speaking(false); err != nil {
			l.logger.Warn("speaking notification failed", "error", err)
		}
	}()

	for off := 0; off < len(pcm); off += opusFrameBytes {
		end := off + opusFrameBytes
		frame := pcm[off:min(end, len(pcm))]
		if len(frame) < opusFrameBytes {
			padded := make([]byte, opusFrameBytes)
			copy(padded, frame)
			frame = padded
		}

		packet, err := enc.encode(frame)
		if err != nil {
			return err
		}

		select {
		case l.vc.OpusSend <- packet:
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return errors.New("bot: voice connection closed")
		case <-time.After(5 * time.Second):
			return errors.New("bot: voice send stalled")
		}
	}
	return nil
}
