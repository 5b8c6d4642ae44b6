package tb303_test

import (
	"math"
	"testing"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/tb303"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestParamEndpoints(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"CutoffHz(0)", tb303.CutoffHz(0), 100},
		{"CutoffHz(100)", tb303.CutoffHz(100), 5000},
		{"DecayMs(0)", tb303.DecayMs(0), 30},
		{"DecayMs(100)", tb303.DecayMs(100), 2000},
		{"Resonance(50)", tb303.Resonance(50), 0.5},
		{"EnvMod(100)", tb303.EnvMod(100), 1},
		{"AccentAmount(25)", tb303.AccentAmount(25), 0.25},
	}
	for _, c := range cases {
		if !almostEqual(c.got, c.want, 1e-9*c.want+1e-12) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParamsClamp(t *testing.T) {
	if tb303.CutoffHz(-20) != tb303.CutoffHz(0) {
		t.Errorf("negative cutoff should clamp to 0")
	}
	if tb303.CutoffHz(1000) != tb303.CutoffHz(100) {
		t.Errorf("cutoff above 100 should clamp to 100")
	}
	if tb303.DecayMs(math.NaN()) != tb303.DecayMs(0) {
		t.Errorf("NaN decay should map like 0")
	}
	if tb303.Resonance(150) != 1 {
		t.Errorf("resonance above 100 should clamp to 1")
	}
}

func TestParamsMonotonic(t *testing.T) {
	for v := 0.0; v < 100; v++ {
		if tb303.CutoffHz(v+1) <= tb303.CutoffHz(v) {
			t.Fatalf("CutoffHz not increasing at %v", v)
		}
		if tb303.DecayMs(v+1) <= tb303.DecayMs(v) {
			t.Fatalf("DecayMs not increasing at %v", v)
		}
		if tb303.Resonance(v+1) <= tb303.Resonance(v) {
			t.Fatalf("Resonance not increasing at %v", v)
		}
	}
}

func TestMapParams(t *testing.T) {
	c := tb303.MapParams(p303.Params{Waveform: p303.Square, Cutoff: 100, Resonance: 20, EnvMod: 40, Decay: 0, Accent: 80})
	if c.Waveform != p303.Square || !almostEqual(c.CutoffHz, 5000, 1e-6) || !almostEqual(c.Resonance, 0.2, 1e-12) ||
		!almostEqual(c.EnvMod, 0.4, 1e-12) || !almostEqual(c.DecayMs, 30, 1e-9) || !almostEqual(c.Accent, 0.8, 1e-12) {
		t.Fatalf("unexpected controls %+v", c)
	}
}
