package p303_test

import (
	"bytes"
	"testing"

	"github.com/pattern303/p303"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteSpan struct {
	key, vel uint8
	on, off  uint32
}

func readNotes(t *testing.T, data []byte) (notes []noteSpan, bpm float64) {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("could not read back MIDI file: %v", err)
	}
	if len(s.Tracks) != 1 {
		t.Fatalf("expected one track, got %d", len(s.Tracks))
	}
	open := map[uint8]int{}
	var tick uint32
	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		msg := midi.Message(ev.Message)
		switch {
		case ev.Message.GetMetaTempo(&bpm):
		case msg.GetNoteStart(&ch, &key, &vel):
			open[key] = len(notes)
			notes = append(notes, noteSpan{key: key, vel: vel, on: tick})
		case msg.GetNoteEnd(&ch, &key):
			if i, ok := open[key]; ok {
				notes[i].off = tick
				delete(open, key)
			}
		}
	}
	return notes, bpm
}

func TestWriteMIDI(t *testing.T) {
	p := p303.DefaultPattern()
	for i := range p.Steps {
		p.Steps[i].Gate = p303.GateRest
	}
	p.Steps[0] = p303.Step{Pitch: 0, Accent: true}
	p.Steps[1] = p303.Step{Pitch: 7, Slide: true}
	p.Steps[4] = p303.Step{Pitch: 3, Octave: 1}
	p.Steps[5] = p303.Step{Pitch: 3, Octave: 1, Gate: p303.GateTie}
	var buf bytes.Buffer
	if err := p303.WriteMIDI(&buf, p, 2); err != nil {
		t.Fatalf("WriteMIDI failed: %v", err)
	}
	notes, bpm := readNotes(t, buf.Bytes())
	if bpm < 119.9 || bpm > 120.1 {
		t.Fatalf("tempo = %v, want 120", bpm)
	}
	if len(notes) != 6 {
		t.Fatalf("expected 6 notes (3 per loop), got %d: %+v", len(notes), notes)
	}
	first, slid, tied := notes[0], notes[1], notes[2]
	if first.key != 48 || first.vel != 127 || first.on != 0 {
		t.Fatalf("accented first note wrong: %+v", first)
	}
	if slid.key != 55 || slid.vel != 100 || slid.on != 24 {
		t.Fatalf("slid note wrong: %+v", slid)
	}
	if first.off <= slid.on {
		t.Fatalf("slide should overlap the previous note: %+v %+v", first, slid)
	}
	if tied.key != 63 || tied.on != 4*24 || tied.off != 5*24+12 {
		t.Fatalf("tied note should last one and a half steps: %+v", tied)
	}
	if notes[3].on != 16*24 {
		t.Fatalf("second loop should start at tick %d, got %+v", 16*24, notes[3])
	}
}

func TestWriteMIDIRejectsInvalid(t *testing.T) {
	p := p303.DefaultPattern()
	p.Tempo = 0
	var buf bytes.Buffer
	if err := p303.WriteMIDI(&buf, p, 1); err == nil {
		t.Fatalf("expected an error for tempo 0")
	}
}
