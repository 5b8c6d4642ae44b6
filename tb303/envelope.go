package tb303

import "math"

type (
	// Envelope is an attack-decay-release generator. Attack is a linear ramp
	// from wherever the level currently is, so retriggering a sounding
	// envelope never jumps. Decay and release are exponential.
	Envelope struct {
		stage       Stage
		level       float64
		peak        float64
		attackStep  float64
		attackLeft  int
		decayMult   float64
		releaseMult float64
	}

	Stage int
)

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageRelease
)

// silenceLevel is the level below which a decaying or releasing envelope
// snaps to exactly zero.
const silenceLevel = 1e-4

// releaseDepthDB is how far a release falls over its nominal duration.
const releaseDepthDB = 80

// DecayMultiplier returns the per-sample multiplier of an exponential decay
// with time constant ms.
func DecayMultiplier(ms, sampleRate float64) float64 {
	n := ms * 0.001 * sampleRate
	if n < 1 {
		return 0
	}
	return math.Exp(-1 / n)
}

// ReleaseMultiplier returns the per-sample multiplier that falls by 80 dB in
// ms milliseconds.
func ReleaseMultiplier(ms, sampleRate float64) float64 {
	n := ms * 0.001 * sampleRate
	if n < 1 {
		return 0
	}
	return math.Pow(10, -releaseDepthDB/20/n)
}

// Trigger starts the envelope: a linear ramp to peak over attack samples,
// followed by decay with the given per-sample multiplier.
func (e *Envelope) Trigger(peak float64, attack int, decayMult float64) {
	e.peak = peak
	e.decayMult = decayMult
	if attack <= 0 {
		e.level = peak
		e.stage = StageDecay
		return
	}
	e.stage = StageAttack
	e.attackLeft = attack
	e.attackStep = (peak - e.level) / float64(attack)
}

// Release fades the envelope out with the given per-sample multiplier.
func (e *Envelope) Release(mult float64) {
	if e.stage == StageIdle {
		return
	}
	e.releaseMult = mult
	e.stage = StageRelease
}

// Next advances the envelope by one sample and returns the new level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageAttack:
		e.attackLeft--
		e.level += e.attackStep
		if e.attackLeft <= 0 {
			e.level = e.peak
			e.stage = StageDecay
		}
	case StageDecay:
		e.level *= e.decayMult
		e.snap()
	case StageRelease:
		e.level *= e.releaseMult
		e.snap()
	}
	return e.level
}

func (e *Envelope) snap() {
	if e.level < silenceLevel {
		e.level = 0
		e.stage = StageIdle
	}
}

func (e *Envelope) Level() float64 { return e.level }

func (e *Envelope) Stage() Stage { return e.stage }

func (e *Envelope) Reset() { *e = Envelope{} }
