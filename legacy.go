package p303

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// patternFile is the on-disk shape of a pattern. It differs from Pattern only
// in the gate of the steps, which older files store as a boolean (true =
// note, false = rest) instead of the note/tie/rest enum. Nothing outside this
// file ever sees the boolean form.
type (
	patternFile struct {
		Name      string     `yaml:"name" json:"name"`
		Creator   string     `yaml:"creator" json:"creator"`
		Tempo     float64    `yaml:"tempo" json:"tempo"`
		Waveform  Waveform   `yaml:"waveform" json:"waveform"`
		Cutoff    float64    `yaml:"cutoff" json:"cutoff"`
		Resonance float64    `yaml:"resonance" json:"resonance"`
		EnvMod    float64    `yaml:"envmod" json:"envMod"`
		Decay     float64    `yaml:"decay" json:"decay"`
		Accent    float64    `yaml:"accent" json:"accent"`
		Steps     []stepFile `yaml:"steps" json:"steps"`
		Bank      string     `yaml:"bank" json:"bank"`
		Section   string     `yaml:"section" json:"section"`
		Number    int        `yaml:"number" json:"patternNumber"`
		EfxNotes  string     `yaml:"efxnotes" json:"efxNotes"`
	}

	stepFile struct {
		Pitch  int  `yaml:"pitch" json:"pitch"`
		Octave int  `yaml:"octave" json:"octave"`
		Gate   any  `yaml:"gate" json:"gate"`
		Accent bool `yaml:"accent" json:"accent"`
		Slide  bool `yaml:"slide" json:"slide"`
	}
)

// ReadPattern parses a pattern from JSON or YAML, migrating legacy boolean
// gates, and validates the result.
func ReadPattern(data []byte) (Pattern, error) {
	var f patternFile
	if errJSON := json.Unmarshal(data, &f); errJSON != nil {
		f = patternFile{}
		if errYaml := yaml.Unmarshal(data, &f); errYaml != nil {
			return Pattern{}, fmt.Errorf("the pattern could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	p, err := f.pattern()
	if err != nil {
		return Pattern{}, err
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern: %w", err)
	}
	return p, nil
}

func (f *patternFile) pattern() (Pattern, error) {
	p := Pattern{
		Name:    f.Name,
		Creator: f.Creator,
		Tempo:   f.Tempo,
		Params: Params{
			Waveform:  f.Waveform,
			Cutoff:    f.Cutoff,
			Resonance: f.Resonance,
			EnvMod:    f.EnvMod,
			Decay:     f.Decay,
			Accent:    f.Accent,
		},
		Steps:    make([]Step, len(f.Steps)),
		Bank:     f.Bank,
		Section:  f.Section,
		Number:   f.Number,
		EfxNotes: f.EfxNotes,
	}
	for i, s := range f.Steps {
		gate, err := MigrateGate(s.Gate)
		if err != nil {
			return Pattern{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		p.Steps[i] = Step{Pitch: s.Pitch, Octave: s.Octave, Gate: gate, Accent: s.Accent, Slide: s.Slide}
	}
	return p, nil
}

// MigrateGate converts a decoded gate value of any vintage into a Gate. A
// missing gate is a note, as in a freshly initialized pattern.
func MigrateGate(v any) (Gate, error) {
	switch g := v.(type) {
	case nil:
		return GateNote, nil
	case bool:
		if g {
			return GateNote, nil
		}
		return GateRest, nil
	case string:
		return ParseGate(g)
	}
	return 0, fmt.Errorf("%w: gate of type %T", ErrStepRange, v)
}
