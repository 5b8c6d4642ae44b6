package tb303

import "math"

// Glide moves the oscillator frequency between notes. A glide is linear in
// pitch: the frequency is multiplied by a constant ratio every sample and
// lands exactly on the target at the end.
type Glide struct {
	freq   float64
	target float64
	ratio  float64
	left   int
	valid  bool // a pitch has been set since the last Reset
}

// DefaultGlideMs is the slide time of the original hardware.
const DefaultGlideMs = 60

// Jump sets the frequency immediately, cancelling any glide in progress.
func (g *Glide) Jump(hz float64) {
	g.freq, g.target, g.left, g.valid = hz, hz, 0, true
}

// GlideTo glides from the current frequency to hz over n samples. With no
// previous pitch, it jumps.
func (g *Glide) GlideTo(hz float64, n int) {
	if !g.valid || n <= 0 || !(g.freq > 0) || !(hz > 0) {
		g.Jump(hz)
		return
	}
	g.target = hz
	g.left = n
	g.ratio = math.Pow(hz/g.freq, 1/float64(n))
}

// Next advances the glide by one sample and returns the frequency.
func (g *Glide) Next() float64 {
	if g.left > 0 {
		g.left--
		if g.left == 0 {
			g.freq = g.target
		} else {
			g.freq *= g.ratio
		}
	}
	return g.freq
}

func (g *Glide) Frequency() float64 { return g.freq }

func (g *Glide) Gliding() bool { return g.left > 0 }

// HasPitch tells if a glide would start from a previous pitch.
func (g *Glide) HasPitch() bool { return g.valid }

func (g *Glide) Reset() { *g = Glide{} }
