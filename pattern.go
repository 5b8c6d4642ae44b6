package p303

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Pattern is a TB-303 style pattern: exactly NumSteps sixteenth note
	// steps, the tempo they are played at and the knob settings of the synth.
	// Patterns are values owned by the caller; the engine only ever keeps a
	// private copy of them.
	Pattern struct {
		Name    string  `yaml:",omitempty" json:"name"`
		Creator string  `yaml:",omitempty" json:"creator"`
		Tempo   float64 `json:"tempo"` // beats per minute
		Params  `yaml:",inline"`
		Steps   []Step `json:"steps"`

		// Bank, Section and Number place the pattern in the I-IV / A-B / 1-8
		// pattern memory layout of the original hardware. They have no
		// effect on the sound.
		Bank     string `yaml:",omitempty" json:"bank,omitempty"`
		Section  string `yaml:",omitempty" json:"section,omitempty"`
		Number   int    `yaml:",omitempty" json:"patternNumber,omitempty"`
		EfxNotes string `yaml:",omitempty" json:"efxNotes,omitempty"`
	}

	// Params are the global knobs of the synth, all of them normalized to
	// 0..100 except the Waveform switch.
	Params struct {
		Waveform  Waveform `json:"waveform"`
		Cutoff    float64  `json:"cutoff"`
		Resonance float64  `json:"resonance"`
		EnvMod    float64  `yaml:"envmod" json:"envMod"`
		Decay     float64  `json:"decay"`
		Accent    float64  `json:"accent"`
	}

	// Step is one sixteenth note slot of a Pattern.
	Step struct {
		Pitch  int  `json:"pitch"`  // semitones above C, 0..12
		Octave int  `json:"octave"` // -1, 0 or 1
		Gate   Gate `json:"gate"`
		Accent bool `yaml:",omitempty" json:"accent"`
		Slide  bool `yaml:",omitempty" json:"slide"`
	}

	// Gate tells whether a step plays a new note, continues the previous one
	// or is silent.
	Gate int

	Waveform int
)

const (
	GateNote Gate = iota // trigger a new note
	GateTie              // continue the previous note, gliding to the new pitch
	GateRest             // silence
)

const (
	Saw Waveform = iota
	Square
)

const (
	NumSteps = 16

	// BaseNote is the MIDI note of pitch 0 in octave 0 (C3).
	BaseNote = 48

	MaxTempo = 300
	MaxKnob  = 100
)

var (
	ErrInvalidTempo = errors.New("tempo out of range")
	ErrStepCount    = errors.New("wrong number of steps")
	ErrStepRange    = errors.New("step out of range")
	ErrParamRange   = errors.New("parameter out of range")
)

var NoteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B", "C"}

var gateNames = [...]string{"note", "tie", "rest"}

var waveformNames = [...]string{"saw", "square"}

// DefaultPattern returns the pattern a fresh editor starts with: 16 plain C
// notes at 120 BPM with every knob at noon.
func DefaultPattern() Pattern {
	steps := make([]Step, NumSteps)
	return Pattern{
		Tempo: 120,
		Params: Params{
			Waveform:  Saw,
			Cutoff:    50,
			Resonance: 50,
			EnvMod:    50,
			Decay:     50,
			Accent:    50,
		},
		Steps:   steps,
		Bank:    "I",
		Section: "A",
		Number:  1,
	}
}

// Copy makes a deep copy of the pattern.
func (p *Pattern) Copy() Pattern {
	ret := *p
	ret.Steps = make([]Step, len(p.Steps))
	copy(ret.Steps, p.Steps)
	return ret
}

// Validate checks that the pattern can be handed to the engine.
func (p *Pattern) Validate() error {
	if err := ValidateTempo(p.Tempo); err != nil {
		return err
	}
	if err := p.Params.Validate(); err != nil {
		return err
	}
	if len(p.Steps) != NumSteps {
		return fmt.Errorf("%w: pattern has %d steps, want %d", ErrStepCount, len(p.Steps), NumSteps)
	}
	for i, s := range p.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func ValidateTempo(bpm float64) error {
	if math.IsNaN(bpm) || bpm <= 0 || bpm > MaxTempo {
		return fmt.Errorf("%w: %v BPM, want 0 < tempo <= %v", ErrInvalidTempo, bpm, MaxTempo)
	}
	return nil
}

// ValidateKnob checks that a normalized knob value lies in 0..100.
func ValidateKnob(name string, value float64) error {
	if math.IsNaN(value) || value < 0 || value > MaxKnob {
		return fmt.Errorf("%w: %s = %v, want 0..%v", ErrParamRange, name, value, MaxKnob)
	}
	return nil
}

func (p Params) Validate() error {
	if p.Waveform != Saw && p.Waveform != Square {
		return fmt.Errorf("%w: unknown waveform %d", ErrParamRange, int(p.Waveform))
	}
	knobs := []struct {
		name  string
		value float64
	}{
		{"cutoff", p.Cutoff},
		{"resonance", p.Resonance},
		{"envmod", p.EnvMod},
		{"decay", p.Decay},
		{"accent", p.Accent},
	}
	for _, k := range knobs {
		if err := ValidateKnob(k.name, k.value); err != nil {
			return err
		}
	}
	return nil
}

func (s Step) Validate() error {
	if s.Pitch < 0 || s.Pitch > 12 {
		return fmt.Errorf("%w: pitch %d, want 0..12", ErrStepRange, s.Pitch)
	}
	if s.Octave < -1 || s.Octave > 1 {
		return fmt.Errorf("%w: octave %d, want -1, 0 or 1", ErrStepRange, s.Octave)
	}
	if s.Gate < GateNote || s.Gate > GateRest {
		return fmt.Errorf("%w: unknown gate %d", ErrStepRange, int(s.Gate))
	}
	return nil
}

// Note returns the MIDI note number of the step.
func (s Step) Note() int {
	return BaseNote + s.Pitch + 12*s.Octave
}

// String formats the step the way it is written on a pattern sheet, e.g.
// "C#+ AS" for an accented, slid C sharp one octave up.
func (s Step) String() string {
	if s.Gate == GateRest {
		return "---"
	}
	var b strings.Builder
	if s.Gate == GateTie {
		b.WriteString("~")
	}
	b.WriteString(NoteNames[s.Pitch%len(NoteNames)])
	switch s.Octave {
	case 1:
		b.WriteString("+")
	case -1:
		b.WriteString("-")
	}
	if s.Accent || s.Slide {
		b.WriteString(" ")
	}
	if s.Accent {
		b.WriteString("A")
	}
	if s.Slide {
		b.WriteString("S")
	}
	return b.String()
}

// NoteFrequency converts a (possibly fractional) MIDI note to Hz.
func NoteFrequency(note float64) float64 {
	return 440 * math.Exp2((note-69)/12)
}

// FrequencyNote is the inverse of NoteFrequency.
func FrequencyNote(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440)
}

// StepDuration returns the length of one sixteenth note step in seconds.
func StepDuration(bpm float64) float64 {
	return 60 / bpm / 4
}

// Marshal encodes the pattern as YAML.
func (p *Pattern) Marshal() ([]byte, error) {
	ret, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal pattern: %w", err)
	}
	return ret, nil
}

func (g Gate) String() string {
	if g < 0 || int(g) >= len(gateNames) {
		return fmt.Sprintf("Gate(%d)", int(g))
	}
	return gateNames[g]
}

func (g Gate) MarshalText() ([]byte, error) {
	if g < 0 || int(g) >= len(gateNames) {
		return nil, fmt.Errorf("%w: unknown gate %d", ErrStepRange, int(g))
	}
	return []byte(gateNames[g]), nil
}

func (g *Gate) UnmarshalText(text []byte) error {
	v, err := ParseGate(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func ParseGate(s string) (Gate, error) {
	for i, n := range gateNames {
		if strings.EqualFold(s, n) {
			return Gate(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown gate %q", ErrStepRange, s)
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveformNames) {
		return nil, fmt.Errorf("%w: unknown waveform %d", ErrParamRange, int(w))
	}
	return []byte(waveformNames[w]), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(s) {
	case "saw", "sawtooth", "s":
		return Saw, nil
	case "square", "sqr", "q":
		return Square, nil
	}
	return 0, fmt.Errorf("%w: unknown waveform %q", ErrParamRange, s)
}
