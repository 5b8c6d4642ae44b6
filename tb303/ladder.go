package tb303

import "math"

type (
	// Ladder is a four pole diode ladder low-pass in the style of the
	// TB-303: four diffusively coupled integrators, a tanh saturated input
	// stage and a resonance feedback path that is high-passed so the bass
	// does not thin out at high resonance.
	Ladder struct {
		tuning     LadderTuning
		sampleRate float64

		cutoff, resonance float64
		valid             bool

		b0, k, g float64
		y        [5]float64
		feedback onePole
	}

	// LadderTuning holds the curve fits that map the normalized cutoff onto
	// the integrator gain b0 and the feedback gain k, together with the
	// corner of the feedback high-pass. The fits are empirical; they can be
	// retuned without touching the filter structure.
	LadderTuning struct {
		CutoffScale        float64    // scales the angular cutoff into the fit variable fx
		B0Num              [2]float64 // b0 = (B0Num[0] + B0Num[1]*fx) / (1 + B0Den[0]*fx + B0Den[1]*fx²)
		B0Den              [2]float64
		K                  []float64 // polynomial in fx, highest power first
		KNorm              float64   // value of K at fx = 0, used to normalize the output gain
		ResonanceSkew      float64
		FeedbackHighpassHz float64
	}
)

// maxB0 keeps the explicit update of the integrators stable.
const maxB0 = 0.45

var DefaultLadderTuning = LadderTuning{
	CutoffScale:        0.11253953951963826,
	B0Num:              [2]float64{0.00045522346, 6.1922189},
	B0Den:              [2]float64{12.358354, 4.4156345},
	K:                  []float64{1, 7198.6997, -5837.7917, -476.47308, 614.95611, 213.87126, 16.998792},
	KNorm:              17,
	ResonanceSkew:      3,
	FeedbackHighpassHz: 150,
}

func NewLadder(sampleRate float64, tuning LadderTuning) *Ladder {
	if tuning.CutoffScale == 0 || len(tuning.K) == 0 || tuning.KNorm == 0 {
		tuning = DefaultLadderTuning
	}
	l := &Ladder{
		tuning:     tuning,
		sampleRate: sampleRate,
		feedback:   highpass(tuning.FeedbackHighpassHz, sampleRate),
	}
	l.SetParams(500, 0)
	return l
}

func (l *Ladder) SetParams(cutoffHz, resonance float64) {
	cutoffHz = clampCutoff(cutoffHz, l.sampleRate)
	resonance = clampUnit(resonance)
	if l.valid && cutoffHz == l.cutoff && resonance == l.resonance {
		return
	}
	l.cutoff, l.resonance, l.valid = cutoffHz, resonance, true
	t := &l.tuning
	rs := resonance
	if t.ResonanceSkew > 0 {
		rs = (1 - math.Exp(-t.ResonanceSkew*resonance)) / (1 - math.Exp(-t.ResonanceSkew))
	}
	fx := 2 * math.Pi * cutoffHz / l.sampleRate * t.CutoffScale
	l.b0 = math.Min((t.B0Num[0]+t.B0Num[1]*fx)/(1+t.B0Den[0]*fx+t.B0Den[1]*fx*fx), maxB0)
	k := t.K[0]
	for _, c := range t.K[1:] {
		k = k*fx + c
	}
	l.g = ((k/t.KNorm-1)*rs + 1) * (1 + rs)
	l.k = k * rs
}

func (l *Ladder) Process(x float64) float64 {
	y := &l.y
	fb := l.feedback.process(l.k * y[4])
	y[0] = math.Tanh(x - fb)
	y[1] += 2 * l.b0 * (y[0] - y[1] + y[2])
	y[2] += l.b0 * (y[1] - 2*y[2] + y[3])
	y[3] += l.b0 * (y[2] - 2*y[3] + y[4])
	y[4] += l.b0 * (y[3] - 2*y[4])
	return 2 * l.g * y[4]
}

func (l *Ladder) Tick(x, cutoffHz, resonance float64) float64 {
	l.SetParams(cutoffHz, resonance)
	return l.Process(x)
}

func (l *Ladder) Reset() {
	l.y = [5]float64{}
	l.feedback.reset()
}

// Coefficients returns the current integrator gain, feedback gain and
// output gain.
func (l *Ladder) Coefficients() (b0, k, g float64) { return l.b0, l.k, l.g }
