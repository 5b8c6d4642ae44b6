// Package tb303 implements a monophonic TB-303 style voice: oscillator,
// resonant filter, envelopes and slide.
package tb303

import (
	"fmt"
	"math"
	"strings"

	"github.com/pattern303/p303"
)

type (
	// Synth is the TB-303 voice. Per sample it runs glide, oscillator, the
	// resonant filter with its cutoff modulated by the filter envelope and
	// accent, the amplitude envelope, master gain and a tanh soft clipper.
	// Filter cutoff is recomputed once per control block of 64 samples.
	Synth struct {
		sampleRate float64
		voicing    Voicing
		options    Options
		controls   Controls

		osc    Oscillator
		filter Filter

		inputHP, allpass, outputHP onePole
		notch, declick             biquad

		amp, fenv Envelope
		glide     Glide

		accentGain           float64
		envScaler, envOffset float64
		block                int

		attackSamples int
		glideSamples  int
		releaseMult   float64
	}

	// Synther builds Synths of one voicing.
	Synther struct {
		Voicing Voicing
		Options Options
	}

	// Options are the settings of the voice that are not on the panel.
	Options struct {
		GlideMs   float64 // slide time
		AttackMs  float64 // amplitude attack ramp
		ReleaseMs float64 // time for a released note to fall 80 dB
		Tuning    float64 // in semitones
		Gain      float64 // master gain before the soft clipper
		Ladder    LadderTuning
	}

	// Voicing selects the oscillator and filter combination.
	Voicing int
)

const (
	// Classic uses the band-limited wavetables and the diode ladder.
	Classic Voicing = iota
	// Lite uses the PolyBLEP oscillator and the cascaded state variable
	// filter. It is cheaper and has no wavetables to build.
	Lite
)

const (
	controlBlock    = 64
	accentDecayMs   = 200
	filterDecayRate = 0.6 // non-accented filter decay relative to the amp decay

	minSampleRate = 8000
	maxSampleRate = 384000
)

// Envelope modulation fits of the classic cutoff/envmod interaction.
const (
	envModC0     = 313.8152786059267
	envModC1     = 2394.411986817546
	envScaleLoA  = 3.773996325111173
	envScaleLoB  = 0.736965594166206
	envScaleHiA  = 4.194548788411135
	envScaleHiB  = 0.864344900642434
	envOffsetA   = 0.048292930943553
	envOffsetB   = 0.294391201442418
	accentOctave = 2
)

var voicingNames = [...]string{"classic", "lite"}

func DefaultOptions() Options {
	return Options{
		GlideMs:   DefaultGlideMs,
		AttackMs:  3,
		ReleaseMs: 8,
		Gain:      0.5,
		Ladder:    DefaultLadderTuning,
	}
}

// withDefaults replaces the unset or non-positive times and gain with the
// defaults, so that a zero Options still ramps, glides and releases.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if !(o.GlideMs > 0) {
		o.GlideMs = d.GlideMs
	}
	if !(o.AttackMs > 0) {
		o.AttackMs = d.AttackMs
	}
	if !(o.ReleaseMs > 0) {
		o.ReleaseMs = d.ReleaseMs
	}
	if !(o.Gain > 0) {
		o.Gain = d.Gain
	}
	return o
}

func (v Voicing) String() string {
	if v < 0 || int(v) >= len(voicingNames) {
		return fmt.Sprintf("Voicing(%d)", int(v))
	}
	return voicingNames[v]
}

func ParseVoicing(s string) (Voicing, error) {
	for i, n := range voicingNames {
		if strings.EqualFold(s, n) {
			return Voicing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown voicing %q", s)
}

func (s Synther) Name() string { return s.Voicing.String() }

func (s Synther) Synth(sampleRate int) (p303.Synth, error) {
	synth, err := NewSynth(sampleRate, s.Voicing, s.Options)
	if err != nil {
		return nil, err
	}
	return synth, nil
}

// NewSynth creates a silent voice with the knobs of the default pattern.
func NewSynth(sampleRate int, voicing Voicing, options Options) (*Synth, error) {
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, fmt.Errorf("sample rate %d Hz out of range %d..%d", sampleRate, minSampleRate, maxSampleRate)
	}
	options = options.withDefaults()
	fs := float64(sampleRate)
	s := &Synth{
		sampleRate:    fs,
		voicing:       voicing,
		options:       options,
		inputHP:       highpass(44.486, fs),
		allpass:       allpass(14.008, fs),
		outputHP:      highpass(24.167, fs),
		notch:         notch(7.5164, 4.7, fs),
		declick:       lowpass12(200, math.Sqrt(0.5), fs),
		attackSamples: int(math.Round(options.AttackMs * 0.001 * fs)),
		glideSamples:  int(math.Round(options.GlideMs * 0.001 * fs)),
		releaseMult:   ReleaseMultiplier(options.ReleaseMs, fs),
	}
	switch voicing {
	case Classic:
		s.osc = NewWavetableOscillator(WavetablesFor(sampleRate))
		s.filter = NewLadder(fs, options.Ladder)
	case Lite:
		s.osc = NewPolyBLEPOscillator(fs)
		s.filter = NewCascadeSVF(fs)
	default:
		return nil, fmt.Errorf("unknown voicing %v", voicing)
	}
	s.Update(p303.DefaultPattern().Params)
	return s, nil
}

func (s *Synth) Update(params p303.Params) {
	s.controls = MapParams(params)
	s.osc.SetWaveform(s.controls.Waveform)
	c := math.Log(s.controls.CutoffHz/envModC0) / math.Log(envModC1/envModC0)
	lo := envScaleLoA*s.controls.EnvMod + envScaleLoB
	hi := envScaleHiA*s.controls.EnvMod + envScaleHiB
	s.envScaler = (1-c)*lo + c*hi
	s.envOffset = envOffsetA*c + envOffsetB
}

func (s *Synth) Trigger(note int, accent, slide bool) {
	hz := s.noteFrequency(note)
	decay := DecayMultiplier(s.controls.DecayMs, s.sampleRate)
	peak := 1.0
	s.accentGain = 0
	filterMult := DecayMultiplier(filterDecayRate*s.controls.DecayMs, s.sampleRate)
	if accent {
		peak += s.controls.Accent
		s.accentGain = s.controls.Accent
		filterMult = DecayMultiplier(accentDecayMs, s.sampleRate)
	}
	s.amp.Trigger(peak, s.attackSamples, decay)
	if slide && s.glide.HasPitch() {
		s.glide.GlideTo(hz, s.glideSamples)
		return
	}
	s.glide.Jump(hz)
	s.fenv.Trigger(1, 0, filterMult)
	s.block = 0
}

func (s *Synth) Tie(note int) {
	s.glide.GlideTo(s.noteFrequency(note), s.glideSamples)
}

func (s *Synth) Release() {
	s.amp.Release(s.releaseMult)
}

func (s *Synth) Silence() {
	s.amp.Reset()
	s.fenv.Reset()
	s.glide.Reset()
	s.filter.Reset()
	s.inputHP.reset()
	s.allpass.reset()
	s.outputHP.reset()
	s.notch.reset()
	s.declick.reset()
	s.accentGain = 0
	s.block = 0
}

func (s *Synth) Render(buffer p303.AudioBuffer) {
	for i := range buffer {
		if s.block == 0 {
			s.modulateCutoff()
		}
		s.block = (s.block + 1) % controlBlock
		s.osc.SetFrequency(s.glide.Next())
		x := s.osc.Next()
		s.fenv.Next()
		gain := s.amp.Next()
		var y float64
		if s.voicing == Classic {
			y = s.filter.Process(s.inputHP.process(x))
			y = s.notch.process(s.outputHP.process(s.allpass.process(y)))
			gain = s.declick.process(gain)
		} else {
			y = s.outputHP.process(s.filter.Process(x))
		}
		out := float32(math.Tanh(y * gain * s.options.Gain))
		buffer[i] = [2]float32{out, out}
	}
}

// modulateCutoff applies the filter envelope and accent to the cutoff.
func (s *Synth) modulateCutoff() {
	env := s.fenv.Level()
	octaves := s.envScaler*(env-s.envOffset) + s.accentGain*env*accentOctave
	s.filter.SetParams(s.controls.CutoffHz*math.Exp2(octaves), s.controls.Resonance)
}

func (s *Synth) noteFrequency(note int) float64 {
	return p303.NoteFrequency(float64(note) + s.options.Tuning)
}

// Options returns the options in effect, defaults filled in.
func (s *Synth) Options() Options { return s.options }

// Controls returns the knob settings currently in effect.
func (s *Synth) Controls() Controls { return s.controls }

// Frequency returns the current oscillator frequency.
func (s *Synth) Frequency() float64 { return s.glide.Frequency() }

// Sounding tells if the amplitude envelope is not idle.
func (s *Synth) Sounding() bool { return s.amp.Stage() != StageIdle }
