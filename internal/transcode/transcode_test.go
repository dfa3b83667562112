package transcode_test

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/ariabot/aria/internal/transcode"
	"github.com/ariabot/aria/pkg/audio"
)

func newTranscoder(t *testing.T) *transcode.Transcoder {
	t.Helper()
	store, err := audio.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return transcode.New(store)
}

func TestToWAV_EmptyInput(t *testing.T) {
	t.Parallel()
	tr := newTranscoder(t)
	_, err := tr.ToWAV(nil)
	if !errors.Is(err, transcode.ErrConversion) {
		t.Fatalf("ToWAV(nil) error = %v, want ErrConversion", err)
	}
}

func TestToWAV_ProducesMono16k(t *testing.T) {
	t.Parallel()
	tr := newTranscoder(t)

	// One second of 48 kHz stereo silence.
	pcm := make([]byte, 48000*2*2)
	path, err := tr.ToWAV(pcm)
	if err != nil {
		t.Fatalf("ToWAV: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("artifact is %d bytes, smaller than a WAV header", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("artifact is not a RIFF/WAVE file")
	}
	if ch := binary.LittleEndian.Uint16(data[22:24]); ch != 1 {
		t.Errorf("channels = %d, want 1", ch)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	// 48 kHz stereo downmixed and resampled to 16 kHz mono: one second is
	// 16000 samples, 32000 bytes.
	if dataLen := binary.LittleEndian.Uint32(data[40:44]); dataLen != 32000 {
		t.Errorf("data chunk length = %d, want 32000", dataLen)
	}
}
