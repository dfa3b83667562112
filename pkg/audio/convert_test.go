package audio_test

import (
	"testing"

	"github.com/ariabot/aria/pkg/audio"
)

func TestBytesInt16RoundTrip(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	got := audio.BytesToInt16(audio.Int16ToBytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(samples))
	}
	for i, v := range samples {
		if got[i] != v {
			t.Errorf("sample %d = %d, want %d", i, got[i], v)
		}
	}
}

func TestBytesToInt16_DropsTrailingByte(t *testing.T) {
	t.Parallel()

	got := audio.BytesToInt16([]byte{0x01, 0x00, 0xff})
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("BytesToInt16 = %v, want [1]", got)
	}
}

func TestMonoStereoRoundTrip(t *testing.T) {
	t.Parallel()

	mono := audio.Int16ToBytes([]int16{100, -200, 300})
	stereo := audio.MonoToStereo(mono)
	if len(stereo) != 2*len(mono) {
		t.Fatalf("stereo length = %d, want %d", len(stereo), 2*len(mono))
	}

	back := audio.StereoToMono(stereo)
	gotSamples := audio.BytesToInt16(back)
	for i, v := range []int16{100, -200, 300} {
		if gotSamples[i] != v {
			t.Errorf("sample %d = %d, want %d", i, gotSamples[i], v)
		}
	}
}

func TestStereoToMono_AveragesChannels(t *testing.T) {
	t.Parallel()

	stereo := audio.Int16ToBytes([]int16{100, 300, -100, -300})
	got := audio.BytesToInt16(audio.StereoToMono(stereo))
	want := []int16{200, -200}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestResampleMono16(t *testing.T) {
	t.Parallel()

	t.Run("same rate is identity", func(t *testing.T) {
		t.Parallel()
		in := audio.Int16ToBytes([]int16{1, 2, 3})
		got := audio.ResampleMono16(in, 48000, 48000)
		if len(got) != len(in) {
			t.Fatalf("length changed on identity resample: %d != %d", len(got), len(in))
		}
	})

	t.Run("downsample thirds the length", func(t *testing.T) {
		t.Parallel()
		// One second of 48 kHz mono.
		in := make([]byte, 48000*2)
		got := audio.ResampleMono16(in, 48000, 16000)
		if len(got) != 16000*2 {
			t.Fatalf("resampled length = %d, want %d", len(got), 16000*2)
		}
	})

	t.Run("upsample interpolates between samples", func(t *testing.T) {
		t.Parallel()
		in := audio.Int16ToBytes([]int16{0, 100})
		got := audio.BytesToInt16(audio.ResampleMono16(in, 1, 2))
		if len(got) != 4 {
			t.Fatalf("resampled sample count = %d, want 4", len(got))
		}
		if got[0] != 0 || got[1] != 50 {
			t.Errorf("interpolated samples = %v, want [0 50 ...]", got)
		}
	})
}

func TestScaleVolume(t *testing.T) {
	t.Parallel()

	in := audio.Int16ToBytes([]int16{1000, -1000, 30000})

	got := audio.BytesToInt16(audio.ScaleVolume(in, 0.5))
	if got[0] != 500 || got[1] != -500 {
		t.Errorf("half volume = %v, want [500 -500 ...]", got)
	}

	got = audio.BytesToInt16(audio.ScaleVolume(in, 2))
	if got[2] != 32767 {
		t.Errorf("doubled 30000 = %d, want clamp to 32767", got[2])
	}
}

func TestPCMDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		byteLen    int
		rate       int
		channels   int
		wantMillis int64
	}{
		{"one second stereo 48k", 48000 * 2 * 2, 48000, 2, 1000},
		{"half second mono 16k", 16000, 16000, 1, 500},
		{"empty", 0, 48000, 2, 0},
		{"zero rate", 1000, 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := audio.PCMDuration(tt.byteLen, tt.rate, tt.channels)
			if got.Milliseconds() != tt.wantMillis {
				t.Errorf("PCMDuration = %v, want %dms", got, tt.wantMillis)
			}
		})
	}
}
