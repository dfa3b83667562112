// Package audio provides the PCM primitives shared by the Aria voice
// pipeline: sample-format conversion, WAV framing, temporary artifact
// management, and the playback interfaces the core components consume.
//
// All audio inside the pipeline is 16-bit signed little-endian PCM. Capture
// produces 48 kHz stereo (the Discord Opus decode output), the transcription
// gateway consumes 16 kHz mono, and playback emits 48 kHz stereo.
package audio

import "time"

const (
	// CaptureSampleRate is the sample rate of decoded Discord voice audio.
	CaptureSampleRate = 48000

	// TranscribeSampleRate is the sample rate expected by the STT gateways.
	TranscribeSampleRate = 16000

	// PlaybackSampleRate is the sample rate of audio sent back to Discord.
	PlaybackSampleRate = 48000

	// bytesPerSample is fixed at 2 for 16-bit PCM.
	bytesPerSample = 2
)

// Cue names a fixed feedback sound played around a conversational turn.
type Cue string

const (
	// CueUnderstood confirms that a trigger phrase was recognised.
	CueUnderstood Cue = "understood"

	// CueResult signals that a reply is about to be spoken.
	CueResult Cue = "result"

	// CueCommand acknowledges an explicit command. This cue plays even in
	// silent mode.
	CueCommand Cue = "command"

	// CueTimer is the sound played when a timer expires.
	CueTimer Cue = "timer"

	// CueAlarm is the sound played when an alarm expires.
	CueAlarm Cue = "alarm"
)

// PCMDuration returns the play time of a raw PCM byte slice of the given
// format. A zero or negative sample rate yields zero.
func PCMDuration(byteLen, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 || byteLen <= 0 {
		return 0
	}
	samples := byteLen / (bytesPerSample * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
