package p303

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length, each
	// sample represented by [2]float32. [0] is left channel, [1] is right
	AudioBuffer [][2]float32

	// AudioContext represents the low-level audio drivers. There should be
	// at most one AudioContext at a time. The interface is implemented at
	// least by oto.Context. Play starts pulling audio from the given fill
	// function, which must fill the whole buffer it is given and must not
	// block. The returned CloserWaiter stops the playback when closed.
	AudioContext interface {
		Play(fill func(buf AudioBuffer) error) CloserWaiter
	}

	// CloserWaiter is a handle to a running playback. Close stops it; Wait
	// blocks until the playback has finished on its own or was closed.
	CloserWaiter interface {
		Close() error
		Wait() error
	}
)

// Fill fills the AudioBuffer with zeroes.
func (buffer AudioBuffer) Fill() {
	for i := range buffer {
		buffer[i] = [2]float32{}
	}
}

// Source returns a fill function that plays the buffer once and then fills
// with silence, returning ErrEndOfBuffer once everything has been consumed.
func (buffer AudioBuffer) Source() func(buf AudioBuffer) error {
	return func(buf AudioBuffer) error {
		n := copy(buf, buffer)
		buffer = buffer[n:]
		buf[n:].Fill()
		if n == 0 {
			return ErrEndOfBuffer
		}
		return nil
	}
}

// Peak returns the largest absolute sample value in the buffer.
func (buffer AudioBuffer) Peak() float32 {
	var peak float32
	for _, s := range buffer {
		for _, v := range s {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}
