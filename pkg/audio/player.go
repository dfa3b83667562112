package audio

import "context"

// Player is the audio output path of a voice session. Implementations play
// 48 kHz stereo 16-bit PCM into the session's voice channel and block until
// playback finishes or ctx is cancelled.
//
// Implementations must be safe for concurrent use; concurrent calls are
// serialised internally so two sounds never interleave on the wire.
type Player interface {
	// Play plays the PCM artifact at path at the given volume (1.0 = unity).
	Play(ctx context.Context, path string, volume float64) error

	// PlayCue plays a named feedback sound. Cue suppression for silent
	// sessions is applied by the implementation; CueCommand always plays.
	PlayCue(ctx context.Context, cue Cue, volume float64) error
}
