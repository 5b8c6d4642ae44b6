package tb303

import "math"

// Filter is a resonant low-pass filter. Coefficients are a pure function of
// cutoff and resonance and are only recomputed when either changes.
type Filter interface {
	SetParams(cutoffHz, resonance float64)
	Process(x float64) float64
	Tick(x, cutoffHz, resonance float64) float64
	Reset()
}

// antiDenormal is added to every feedback path so that decaying states
// never reach subnormal floats.
const antiDenormal = 1e-20

type (
	// onePole is a first order filter y = a0*x + a1*x[-1] + b1*y[-1].
	onePole struct {
		a0, a1, b1 float64
		x1, y1     float64
	}

	// biquad is a direct form I second order filter. The feedback
	// coefficients are stored with their signs folded in.
	biquad struct {
		b0, b1, b2, a1, a2 float64
		x1, x2, y1, y2     float64
	}
)

func highpass(cutoffHz, sampleRate float64) onePole {
	x := math.Exp(-2 * math.Pi * cutoffHz / sampleRate)
	return onePole{a0: 0.5 * (1 + x), a1: -0.5 * (1 + x), b1: x}
}

func allpass(cutoffHz, sampleRate float64) onePole {
	t := math.Tan(math.Pi * cutoffHz / sampleRate)
	x := (t - 1) / (t + 1)
	return onePole{a0: x, a1: 1, b1: -x}
}

func (f *onePole) process(x float64) float64 {
	y := f.a0*x + f.a1*f.x1 + f.b1*f.y1 + antiDenormal
	f.x1, f.y1 = x, y
	return y
}

func (f *onePole) reset() { f.x1, f.y1 = 0, 0 }

func lowpass12(freq, q, sampleRate float64) biquad {
	w := 2 * math.Pi * freq / sampleRate
	s, c := math.Sin(w), math.Cos(w)
	alpha := s / (2 * q)
	scale := 1 / (1 + alpha)
	b1 := (1 - c) * scale
	return biquad{b0: 0.5 * b1, b1: b1, b2: 0.5 * b1, a1: 2 * c * scale, a2: (alpha - 1) * scale}
}

// notch is a band-reject filter; bandwidth is given in octaves.
func notch(freq, bandwidth, sampleRate float64) biquad {
	w := 2 * math.Pi * freq / sampleRate
	s, c := math.Sin(w), math.Cos(w)
	alpha := s * math.Sinh(0.5*math.Ln2*bandwidth*w/s)
	scale := 1 / (1 + alpha)
	return biquad{b0: scale, b1: -2 * c * scale, b2: scale, a1: 2 * c * scale, a2: (alpha - 1) * scale}
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 + f.a1*f.y1 + f.a2*f.y2 + antiDenormal
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) reset() { f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0 }

// clampCutoff limits cutoff to the range every filter is stable in.
func clampCutoff(hz, sampleRate float64) float64 {
	hi := math.Min(20000, maxFrequencyRatio*sampleRate)
	switch {
	case !(hz > 20):
		return 20
	case hz > hi:
		return hi
	}
	return hz
}

func clampUnit(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}
