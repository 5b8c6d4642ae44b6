package p303

import "errors"

type (
	// Synth is a monophonic voice that renders audio. It is driven one step
	// at a time by the player: every method is called from the audio thread
	// only, and none of them may block or allocate.
	Synth interface {
		// Render fills the whole buffer with audio.
		Render(buffer AudioBuffer)
		// Update applies new knob settings. Filter and envelope coefficients
		// follow at the next control block.
		Update(params Params)
		// Trigger starts a new note. If slide is true, the pitch glides from
		// the previous note and the filter envelope is not retriggered.
		Trigger(note int, accent, slide bool)
		// Tie continues the sounding note, gliding to the new pitch without
		// retriggering any envelope.
		Tie(note int)
		// Release lets the sounding note fade out.
		Release()
		// Silence stops all sound immediately and resets the voice state.
		Silence()
	}

	// Synther compiles a given sample rate into a Synth.
	Synther interface {
		Name() string // Name of the synther, e.g. "classic" or "lite"
		Synth(sampleRate int) (Synth, error)
	}
)

// ErrEndOfBuffer is returned by a fill function when it has nothing more to
// play.
var ErrEndOfBuffer = errors.New("end of audio buffer")
