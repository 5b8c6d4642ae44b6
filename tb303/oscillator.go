package tb303

import (
	"math"

	"github.com/pattern303/p303"
)

type (
	// Oscillator produces one band-limited sample per call to Next. The
	// phase runs freely: changing frequency or waveform never resets it.
	Oscillator interface {
		SetFrequency(hz float64)
		SetWaveform(w p303.Waveform)
		Next() float64
	}

	// WavetableOscillator reads the band-limited tables with linear
	// interpolation.
	WavetableOscillator struct {
		tables   *Wavetables
		table    *[TableSize]float32
		waveform p303.Waveform
		freq     float64
		phase    float64 // 0..TableSize
		delta    float64
	}

	// PolyBLEPOscillator generates naive saw and square waves and smooths
	// every discontinuity with a polynomial band-limited step.
	PolyBLEPOscillator struct {
		sampleRate float64
		waveform   p303.Waveform
		freq       float64
		phase      float64 // 0..1
		dt         float64
	}
)

// maxFrequencyRatio bounds oscillator frequencies relative to the sample
// rate.
const maxFrequencyRatio = 0.45

func clampFrequency(hz, sampleRate float64) float64 {
	if !(hz > 0) {
		return 0
	}
	return math.Min(hz, maxFrequencyRatio*sampleRate)
}

func NewWavetableOscillator(tables *Wavetables) *WavetableOscillator {
	o := &WavetableOscillator{tables: tables}
	o.table = tables.Table(p303.Saw, LowestTableNote)
	return o
}

func (o *WavetableOscillator) SetFrequency(hz float64) {
	hz = clampFrequency(hz, o.tables.sampleRate)
	if hz == o.freq {
		return
	}
	o.freq = hz
	o.delta = hz * TableSize / o.tables.sampleRate
	o.table = o.tables.Table(o.waveform, o.tables.TableNote(hz))
}

func (o *WavetableOscillator) SetWaveform(w p303.Waveform) {
	o.waveform = w
	o.table = o.tables.Table(w, o.tables.TableNote(o.freq))
}

func (o *WavetableOscillator) Frequency() float64 { return o.freq }

func (o *WavetableOscillator) Next() float64 {
	idx := int(o.phase)
	r := o.phase - float64(idx)
	t := o.table
	s := (1-r)*float64(t[idx&tableMask]) + r*float64(t[(idx+1)&tableMask])
	o.phase += o.delta
	if o.phase >= TableSize {
		o.phase -= TableSize
	}
	return s
}

func NewPolyBLEPOscillator(sampleRate float64) *PolyBLEPOscillator {
	return &PolyBLEPOscillator{sampleRate: sampleRate}
}

func (o *PolyBLEPOscillator) SetFrequency(hz float64) {
	o.freq = clampFrequency(hz, o.sampleRate)
	o.dt = o.freq / o.sampleRate
}

func (o *PolyBLEPOscillator) SetWaveform(w p303.Waveform) { o.waveform = w }

func (o *PolyBLEPOscillator) Frequency() float64 { return o.freq }

func (o *PolyBLEPOscillator) Next() float64 {
	var s float64
	if o.waveform == p303.Square {
		s = -1
		if o.phase < 0.5 {
			s = 1
		}
		s += polyBLEP(o.phase, o.dt)
		s -= polyBLEP(math.Mod(o.phase+0.5, 1), o.dt)
	} else {
		s = 2*o.phase - 1
		s -= polyBLEP(o.phase, o.dt)
	}
	o.phase += o.dt
	if o.phase >= 1 {
		o.phase -= 1
	}
	return s
}

// polyBLEP is the residual of a band-limited unit step at phase t for a
// phase increment dt.
func polyBLEP(t, dt float64) float64 {
	switch {
	case dt <= 0:
		return 0
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
