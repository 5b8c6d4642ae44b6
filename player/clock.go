package player

import (
	"math"

	"github.com/pattern303/p303"
)

// Clock divides the rendered frames into sixteenth note steps. The step
// length is fractional; the part of a frame that overshoots a boundary is
// carried into the next step, so at a constant tempo boundary k always
// falls within one frame of k step lengths after Start. A tempo change
// applies to the step in progress; if that step is already longer than the
// new step length, it ends at once and exactly one boundary fires.
type Clock struct {
	step    int     // -1 until the first step has started
	pos     float64 // frames since the current step started
	stepLen float64
}

// Start rewinds the clock so that the next frame starts step 0.
func (c *Clock) Start() {
	c.step = -1
	c.pos = 0
}

// Until returns how many frames can be rendered before the next step
// boundary; 0 means the boundary is due now. The tempo is re-read on every
// call, so tempo changes apply to the step in progress.
func (c *Clock) Until(tempo, sampleRate float64) int {
	if c.step < 0 {
		return 0
	}
	c.stepLen = StepLength(tempo, sampleRate)
	d := c.stepLen - c.pos
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d))
}

// Advance moves to the next step and returns its index.
func (c *Clock) Advance() int {
	if c.step < 0 {
		c.step = 0
		c.pos = 0
		return 0
	}
	// Only the sub-frame overshoot is carried. A larger overshoot means the
	// tempo went up mid-step, and the new step starts now.
	c.pos -= c.stepLen
	if c.pos < 0 || c.pos >= 1 {
		c.pos = 0
	}
	c.step = (c.step + 1) % p303.NumSteps
	return c.step
}

// Tick accounts for frames rendered.
func (c *Clock) Tick(frames int) {
	c.pos += float64(frames)
}

// Step returns the current step, -1 if none has started.
func (c *Clock) Step() int { return c.step }

// StepLength returns the length of one step in frames.
func StepLength(tempo, sampleRate float64) float64 {
	return p303.StepDuration(tempo) * sampleRate
}
