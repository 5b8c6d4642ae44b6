package tb303_test

import (
	"math"
	"testing"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/tb303"
)

const testRate = 44100

// risingCrossings counts upward zero crossings in one second of output.
func risingCrossings(o tb303.Oscillator) int {
	n := 0
	prev := o.Next()
	for i := 1; i < testRate; i++ {
		v := o.Next()
		if prev < 0 && v >= 0 {
			n++
		}
		prev = v
	}
	return n
}

func TestOscillatorFrequency(t *testing.T) {
	oscs := map[string]tb303.Oscillator{
		"wavetable": tb303.NewWavetableOscillator(tb303.WavetablesFor(testRate)),
		"polyblep":  tb303.NewPolyBLEPOscillator(testRate),
	}
	for name, o := range oscs {
		for _, wf := range []p303.Waveform{p303.Saw, p303.Square} {
			o.SetWaveform(wf)
			o.SetFrequency(440)
			if n := risingCrossings(o); n < 438 || n > 442 {
				t.Errorf("%s %v: %d cycles in a second, want 440", name, wf, n)
			}
		}
	}
}

func TestPolyBLEPIsBounded(t *testing.T) {
	o := tb303.NewPolyBLEPOscillator(testRate)
	for _, wf := range []p303.Waveform{p303.Saw, p303.Square} {
		o.SetWaveform(wf)
		o.SetFrequency(3000)
		var sum float64
		for i := 0; i < testRate; i++ {
			v := o.Next()
			if math.Abs(v) > 1.5 || math.IsNaN(v) {
				t.Fatalf("%v sample %d = %v", wf, i, v)
			}
			sum += v
		}
		if mean := sum / testRate; math.Abs(mean) > 0.05 {
			t.Errorf("%v has DC offset %v", wf, mean)
		}
	}
}

func TestOscillatorFrequencyClamp(t *testing.T) {
	w := tb303.NewWavetableOscillator(tb303.WavetablesFor(testRate))
	w.SetFrequency(1e6)
	if !almostEqual(w.Frequency(), 0.45*testRate, 1e-6) {
		t.Errorf("wavetable frequency = %v, want %v", w.Frequency(), 0.45*testRate)
	}
	p := tb303.NewPolyBLEPOscillator(testRate)
	p.SetFrequency(1e6)
	if !almostEqual(p.Frequency(), 0.45*testRate, 1e-6) {
		t.Errorf("polyblep frequency = %v, want %v", p.Frequency(), 0.45*testRate)
	}
}
