package bot

import (
	"fmt"

	"layeh.com/gopus"

	"github.com/ariabot/aria/pkg/audio"
)

// Discord voice uses 48 kHz stereo Opus at a 20 ms frame size.
const (
	opusChannels    = 2
	opusFrameSizeMs = 20
	// opusFrameSize is the number of samples per channel per 20 ms frame.
	opusFrameSize = audio.CaptureSampleRate * opusFrameSizeMs / 1000 // 960
	// opusFrameBytes is the PCM input size for one Opus frame.
	opusFrameBytes = opusFrameSize * opusChannels * 2 // 3840
)

// opusDecoder wraps a gopus decoder for a single speaker stream. Each
// speaker needs its own decoder so codec state stays consistent across
// consecutive frames.
type opusDecoder struct {
	dec *gopus.Decoder
}

func newOpusDecoder() (*opusDecoder, error) {
	dec, err := gopus.NewDecoder(audio.CaptureSampleRate, opusChannels)
	if err != nil {
		return nil, fmt.Errorf("bot: create opus decoder: %w", err)
	}
	return &opusDecoder{dec: dec}, nil
}

// decode decodes one Opus packet into interleaved little-endian PCM bytes.
func (d *opusDecoder) decode(packet []byte) ([]byte, error) {
	pcm, err := d.dec.Decode(packet, opusFrameSize, false)
	if err != nil {
		return nil, fmt.Errorf("bot: opus decode: %w", err)
	}
	return audio.Int16ToBytes(pcm), nil
}

// opusEncoder wraps a gopus encoder for the playback stream.
type opusEncoder struct {
	enc *gopus.Encoder
}

func newOpusEncoder() (*opusEncoder, error) {
	enc, err := gopus.NewEncoder(audio.PlaybackSampleRate, opusChannels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("bot: create opus encoder: %w", err)
	}
	return &opusEncoder{enc: enc}, nil
}

// encode encodes exactly one frame of interleaved little-endian PCM bytes.
func (e *opusEncoder) encode(pcm []byte) ([]byte, error) {
	packet, err := e.enc.Encode(audio.BytesToInt16(pcm), opusFrameSize, len(pcm))
	if err != nil {
		return nil, fmt.Errorf("bot: opus encode: %w", err)
	}
	return packet, nil
}
