package tb303

import "math"

type (
	// CascadeSVF is two Chamberlin state variable low-pass stages in series,
	// with tanh saturation in between. The second stage runs at 0.7 times
	// the resonance of the first.
	CascadeSVF struct {
		sampleRate        float64
		cutoff, resonance float64
		valid             bool
		stages            [2]svfStage
	}

	svfStage struct {
		kf, kq    float64
		low, band float64
	}
)

const secondStageResonance = 0.7

func NewCascadeSVF(sampleRate float64) *CascadeSVF {
	f := &CascadeSVF{sampleRate: sampleRate}
	f.SetParams(500, 0)
	return f
}

func (f *CascadeSVF) SetParams(cutoffHz, resonance float64) {
	cutoffHz = clampCutoff(cutoffHz, f.sampleRate)
	resonance = clampUnit(resonance)
	if f.valid && cutoffHz == f.cutoff && resonance == f.resonance {
		return
	}
	f.cutoff, f.resonance, f.valid = cutoffHz, resonance, true
	kf := math.Min(0.99, 2*math.Sin(math.Pi*cutoffHz/f.sampleRate))
	f.stages[0].set(kf, resonance)
	f.stages[1].set(kf, resonance*secondStageResonance)
}

func (s *svfStage) set(kf, resonance float64) {
	s.kf = kf
	s.kq = math.Max(0.1, 1-0.9*resonance)
}

func (s *svfStage) process(x float64) float64 {
	s.low += s.kf*s.band + antiDenormal
	high := x - s.low - s.kq*s.band
	s.band += s.kf * high
	return s.low
}

func (f *CascadeSVF) Process(x float64) float64 {
	return f.stages[1].process(math.Tanh(f.stages[0].process(x)))
}

func (f *CascadeSVF) Tick(x, cutoffHz, resonance float64) float64 {
	f.SetParams(cutoffHz, resonance)
	return f.Process(x)
}

func (f *CascadeSVF) Reset() {
	for i := range f.stages {
		f.stages[i].low, f.stages[i].band = 0, 0
	}
}

// Coefficients returns the frequency and damping coefficients of both
// stages.
func (f *CascadeSVF) Coefficients() (kf, kq1, kq2 float64) {
	return f.stages[0].kf, f.stages[0].kq, f.stages[1].kq
}
