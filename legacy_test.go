package p303_test

import (
	"errors"
	"os"
	"testing"

	"github.com/pattern303/p303"
)

func readTestPattern(t *testing.T, name string) p303.Pattern {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("cannot read %v: %v", name, err)
	}
	p, err := p303.ReadPattern(data)
	if err != nil {
		t.Fatalf("ReadPattern(%v) failed: %v", name, err)
	}
	return p
}

func TestReadLegacyJSON(t *testing.T) {
	p := readTestPattern(t, "legacy.json")
	if p.Name != "acid tracks" || p.Tempo != 126 || p.Number != 3 || p.Bank != "II" {
		t.Fatalf("header fields not read: %+v", p)
	}
	if p.EnvMod != 60 || p.Waveform != p303.Saw {
		t.Fatalf("params not read: %+v", p.Params)
	}
	if p.Steps[0].Gate != p303.GateNote || !p.Steps[0].Accent {
		t.Fatalf("step 1 should be an accented note, got %+v", p.Steps[0])
	}
	if p.Steps[2].Gate != p303.GateRest {
		t.Fatalf("gate false should migrate to rest, got %v", p.Steps[2].Gate)
	}
	if p.Steps[15].Octave != -1 {
		t.Fatalf("step 16 octave = %d, want -1", p.Steps[15].Octave)
	}
}

func TestReadYAML(t *testing.T) {
	p := readTestPattern(t, "tied.yml")
	if p.Waveform != p303.Square || p.Tempo != 160 || p.EnvMod != 30 {
		t.Fatalf("params not read: %+v", p)
	}
	if p.Steps[1].Gate != p303.GateTie || p.Steps[2].Gate != p303.GateRest {
		t.Fatalf("gates not read: %v %v", p.Steps[1].Gate, p.Steps[2].Gate)
	}
	if !p.Steps[3].Slide {
		t.Fatalf("step 4 should slide")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p := readTestPattern(t, "legacy.json")
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	q, err := p303.ReadPattern(data)
	if err != nil {
		t.Fatalf("could not read back marshaled pattern: %v\n%s", err, data)
	}
	if q.Name != p.Name || q.Params != p.Params || q.Number != p.Number {
		t.Fatalf("header changed in round trip: %+v vs %+v", q, p)
	}
	for i := range p.Steps {
		if p.Steps[i] != q.Steps[i] {
			t.Fatalf("step %d changed in round trip: %+v vs %+v", i+1, q.Steps[i], p.Steps[i])
		}
	}
}

func TestReadPatternRejectsInvalid(t *testing.T) {
	_, err := p303.ReadPattern([]byte(`{"tempo": 120, "steps": []}`))
	if !errors.Is(err, p303.ErrStepCount) {
		t.Fatalf("expected ErrStepCount, got %v", err)
	}
	_, err = p303.ReadPattern([]byte("tempo: [unterminated"))
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestMigrateGate(t *testing.T) {
	cases := []struct {
		in   any
		want p303.Gate
	}{
		{true, p303.GateNote},
		{false, p303.GateRest},
		{"tie", p303.GateTie},
		{"REST", p303.GateRest},
		{nil, p303.GateNote},
	}
	for _, c := range cases {
		got, err := p303.MigrateGate(c.in)
		if err != nil || got != c.want {
			t.Errorf("MigrateGate(%v) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
	if _, err := p303.MigrateGate(3.0); !errors.Is(err, p303.ErrStepRange) {
		t.Errorf("numeric gate should fail with ErrStepRange, got %v", err)
	}
}
