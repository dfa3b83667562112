package audio_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ariabot/aria/pkg/audio"
)

func TestWriteReadWAV(t *testing.T) {
	t.Parallel()

	pcm := audio.Int16ToBytes([]int16{0, 1000, -1000, 32767})

	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, pcm, 16000, 1); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if buf.Len() != 44+len(pcm) {
		t.Fatalf("WAV size = %d, want %d", buf.Len(), 44+len(pcm))
	}

	got, rate, channels, err := audio.ReadWAV(&buf)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if rate != 16000 || channels != 1 {
		t.Errorf("format = %d Hz / %d ch, want 16000 Hz / 1 ch", rate, channels)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("data round trip mismatch: got %d bytes", len(got))
	}
}

func TestWriteWAV_EmptyPCM(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, nil, 16000, 1); !errors.Is(err, audio.ErrEmptyPCM) {
		t.Fatalf("WriteWAV(empty) = %v, want ErrEmptyPCM", err)
	}
}

func TestWriteWAV_InvalidFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, []byte{0, 0}, 0, 1); err == nil {
		t.Error("WriteWAV with zero sample rate succeeded, want error")
	}
	if err := audio.WriteWAV(&buf, []byte{0, 0}, 16000, 0); err == nil {
		t.Error("WriteWAV with zero channels succeeded, want error")
	}
}

func TestReadWAV_Rejects(t *testing.T) {
	t.Parallel()

	t.Run("not RIFF", func(t *testing.T) {
		t.Parallel()
		_, _, _, err := audio.ReadWAV(strings.NewReader("this is not a wav file at all, not even close"))
		if err == nil {
			t.Error("ReadWAV accepted garbage")
		}
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, _, _, err := audio.ReadWAV(strings.NewReader("RIFF"))
		if err == nil {
			t.Error("ReadWAV accepted truncated header")
		}
	})
}

func TestReadWAV_SkipsExtraChunks(t *testing.T) {
	t.Parallel()

	pcm := audio.Int16ToBytes([]int16{42, -42})
	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, pcm, 48000, 2); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	// Splice a LIST chunk between fmt and data, as some encoders do.
	raw := buf.Bytes()
	extra := []byte{'L', 'I', 'S', 'T', 4, 0, 0, 0, 'I', 'N', 'F', 'O'}
	spliced := append(append(append([]byte{}, raw[:36]...), extra...), raw[36:]...)

	got, rate, channels, err := audio.ReadWAV(bytes.NewReader(spliced))
	if err != nil {
		t.Fatalf("ReadWAV with extra chunk: %v", err)
	}
	if rate != 48000 || channels != 2 {
		t.Errorf("format = %d Hz / %d ch, want 48000 Hz / 2 ch", rate, channels)
	}
	if !bytes.Equal(got, pcm) {
		t.Error("data mismatch after skipping extra chunk")
	}
}
