package p303

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/sheet.txt
var templateFS embed.FS

var sheetTemplate = template.Must(
	template.New("sheet.txt").
		Funcs(sprig.TxtFuncMap()).
		Funcs(sheetFuncs()).
		ParseFS(templateFS, "templates/sheet.txt"))

const dialWidth = 20

// Sheet renders the pattern as a plain text pattern sheet: the header, one
// row per step attribute and a gauge for each knob.
func Sheet(p Pattern) (string, error) {
	if len(p.Steps) != NumSteps {
		return "", fmt.Errorf("%w: pattern has %d steps, want %d", ErrStepCount, len(p.Steps), NumSteps)
	}
	var buf bytes.Buffer
	if err := sheetTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("could not render pattern sheet: %w", err)
	}
	return buf.String(), nil
}

func sheetFuncs() template.FuncMap {
	return template.FuncMap{
		"title":    func(s string) string { return cases.Title(language.English).String(s) },
		"waveName": func(w Waveform) string { return w.String() },
		"noteCell": func(s Step) string {
			if s.Pitch < 0 || s.Pitch >= len(NoteNames) {
				return "?"
			}
			return NoteNames[s.Pitch]
		},
		"octaveCell": func(s Step) string {
			switch s.Octave {
			case 1:
				return "▲"
			case -1:
				return "▼"
			}
			return "·"
		},
		"gateCell": func(s Step) string {
			switch s.Gate {
			case GateNote:
				return "●"
			case GateTie:
				return "~"
			}
			return "○"
		},
		"flagCell": func(on bool, mark string) string {
			if on {
				return mark
			}
			return "·"
		},
		"dial": func(label string, value float64) string {
			n := int(math.Round(clamp(value, 0, MaxKnob) / MaxKnob * dialWidth))
			return fmt.Sprintf("%-10s [%s%s] %3.0f", label, strings.Repeat("#", n), strings.Repeat(".", dialWidth-n), value)
		},
	}
}
