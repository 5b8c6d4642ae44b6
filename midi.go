package p303

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// MIDITicksPerQuarter is the resolution of exported MIDI files.
	MIDITicksPerQuarter = 96
	ticksPerStep        = MIDITicksPerQuarter / 4
	gateTicks           = ticksPerStep / 2

	velocityNormal = 100
	velocityAccent = 127
)

type midiEvent struct {
	tick uint32
	msg  midi.Message
}

// WriteMIDI writes the pattern, repeated loops times, as a single track
// Standard MIDI File on channel 1. Accented steps get full velocity; slides
// and ties are written as overlapping (legato) notes, which is how most
// 303 style instruments expect them.
func WriteMIDI(w io.Writer, p Pattern, loops int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if loops < 1 {
		loops = 1
	}
	events := midiEvents(p, loops)
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(p.Name))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(p.Tempo))
	var last uint32
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	end := uint32(loops * NumSteps * ticksPerStep)
	tr.Close(end - last)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(MIDITicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("could not add track to MIDI file: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write MIDI file: %w", err)
	}
	return nil
}

func midiEvents(p Pattern, loops int) []midiEvent {
	const channel = 0
	var events []midiEvent
	sounding := -1
	total := loops * NumSteps
	for i := 0; i < total; i++ {
		s := p.Steps[i%NumSteps]
		t := uint32(i * ticksPerStep)
		key := s.Note()
		vel := uint8(velocityNormal)
		if s.Accent {
			vel = velocityAccent
		}
		switch s.Gate {
		case GateRest:
			continue
		case GateTie:
			if sounding < 0 {
				continue
			}
			if sounding != key {
				events = append(events,
					midiEvent{t, midi.NoteOn(channel, uint8(key), vel)},
					midiEvent{t + 1, midi.NoteOff(channel, uint8(sounding))})
			}
		case GateNote:
			switch {
			case sounding == key: // slide to the same key just extends the note
			case sounding >= 0:
				events = append(events,
					midiEvent{t, midi.NoteOn(channel, uint8(key), vel)},
					midiEvent{t + 1, midi.NoteOff(channel, uint8(sounding))})
			default:
				events = append(events, midiEvent{t, midi.NoteOn(channel, uint8(key), vel)})
			}
		}
		sounding = key
		if i+1 < total && legato(p.Steps[(i+1)%NumSteps]) {
			continue
		}
		events = append(events, midiEvent{t + gateTicks, midi.NoteOff(channel, uint8(key))})
		sounding = -1
	}
	return events
}

// legato tells if the step continues the note sounding before it.
func legato(next Step) bool {
	return next.Gate == GateTie || (next.Gate == GateNote && next.Slide)
}
