package tb303

import (
	"math"
	"sync"

	"github.com/pattern303/p303"
)

// Wavetables holds one band-limited single cycle table per MIDI note in
// LowestTableNote..HighestTableNote for both waveforms. A table contains
// only the partials of its note that stay below Nyquist. Frequencies above
// the highest note use the SineTableNote table, which holds the fundamental
// only. Wavetables are read-only once built and shared by all synths running
// at the same sample rate.
type Wavetables struct {
	sampleRate float64
	tables     [2][numTableNotes][TableSize]float32 // [waveform][note]
}

const (
	TableSize = 4096
	tableMask = TableSize - 1

	LowestTableNote  = 24
	HighestTableNote = 120
	SineTableNote    = HighestTableNote + 1
	numTableNotes    = SineTableNote - LowestTableNote + 1
)

var (
	wavetableMutex sync.Mutex
	wavetableCache = map[int]*Wavetables{}
)

// WavetablesFor returns the tables for the given sample rate, building them
// on first use.
func WavetablesFor(sampleRate int) *Wavetables {
	wavetableMutex.Lock()
	defer wavetableMutex.Unlock()
	if w, ok := wavetableCache[sampleRate]; ok {
		return w
	}
	w := newWavetables(float64(sampleRate))
	wavetableCache[sampleRate] = w
	return w
}

// newWavetables builds the tables from the highest note down, so each
// table only adds the partials that became legal since the note above it.
func newWavetables(sampleRate float64) *Wavetables {
	w := &Wavetables{sampleRate: sampleRate}
	var sine [TableSize]float64
	for i := range sine {
		sine[i] = math.Sin(2 * math.Pi * float64(i) / TableSize)
	}
	sineIdx := SineTableNote - LowestTableNote
	for i, v := range sine {
		w.tables[p303.Saw][sineIdx][i] = float32(v * 2 / math.Pi)
		w.tables[p303.Square][sineIdx][i] = float32(v * 4 / math.Pi)
	}
	var saw, square [TableSize]float64
	harmonics := 0
	for note := HighestTableNote; note >= LowestTableNote; note-- {
		limit := int(sampleRate / 2 / p303.NoteFrequency(float64(note)))
		for h := harmonics + 1; h <= limit; h++ {
			amp := 1 / float64(h)
			odd := h%2 == 1
			for i := range saw {
				s := sine[(i*h)&tableMask] * amp
				saw[i] += s
				if odd {
					square[i] += s
				}
			}
		}
		if limit > harmonics {
			harmonics = limit
		}
		idx := note - LowestTableNote
		for i := range saw {
			w.tables[p303.Saw][idx][i] = float32(saw[i] * 2 / math.Pi)
			w.tables[p303.Square][idx][i] = float32(square[i] * 4 / math.Pi)
		}
	}
	return w
}

// TableNote returns the note of the table used for frequency hz: the lowest
// table note whose fundamental is at or above hz, or SineTableNote above
// HighestTableNote.
func (w *Wavetables) TableNote(hz float64) int {
	if !(hz > 0) {
		return LowestTableNote
	}
	n := int(math.Ceil(p303.FrequencyNote(hz) - 1e-9))
	if n < LowestTableNote {
		return LowestTableNote
	}
	if n > HighestTableNote {
		return SineTableNote
	}
	return n
}

// Table returns the table of a waveform for a table note.
func (w *Wavetables) Table(waveform p303.Waveform, note int) *[TableSize]float32 {
	if waveform != p303.Square {
		waveform = p303.Saw
	}
	if note < LowestTableNote {
		note = LowestTableNote
	}
	if note > SineTableNote {
		note = SineTableNote
	}
	return &w.tables[waveform][note-LowestTableNote]
}

func (w *Wavetables) SampleRate() float64 { return w.sampleRate }
