package tb303

import (
	"math"

	"github.com/pattern303/p303"
)

// Controls are the knob settings of the voice mapped into physical units.
type Controls struct {
	Waveform  p303.Waveform
	CutoffHz  float64 // 100..5000 Hz
	Resonance float64 // 0..1
	EnvMod    float64 // 0..1
	DecayMs   float64 // 30..2000 ms
	Accent    float64 // 0..1
}

const (
	minCutoffHz = 100
	maxCutoffHz = 5000
	minDecayMs  = 30
	maxDecayMs  = 2000
)

// CutoffHz maps the 0..100 cutoff knob exponentially onto 100..5000 Hz.
func CutoffHz(v float64) float64 {
	return minCutoffHz * math.Pow(maxCutoffHz/minCutoffHz, knob(v))
}

func Resonance(v float64) float64 { return knob(v) }

func EnvMod(v float64) float64 { return knob(v) }

func AccentAmount(v float64) float64 { return knob(v) }

// DecayMs maps the 0..100 decay knob exponentially onto 30..2000 ms.
func DecayMs(v float64) float64 {
	return minDecayMs * math.Pow(maxDecayMs/minDecayMs, knob(v))
}

// MapParams maps all the knobs at once.
func MapParams(p p303.Params) Controls {
	return Controls{
		Waveform:  p.Waveform,
		CutoffHz:  CutoffHz(p.Cutoff),
		Resonance: Resonance(p.Resonance),
		EnvMod:    EnvMod(p.EnvMod),
		DecayMs:   DecayMs(p.Decay),
		Accent:    AccentAmount(p.Accent),
	}
}

// knob clamps v to 0..100 and normalizes it to 0..1. NaN counts as 0.
func knob(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > p303.MaxKnob:
		return 1
	}
	return v / p303.MaxKnob
}
