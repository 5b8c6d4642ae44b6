package player

import (
	"math"

	"github.com/pattern303/p303"
	"github.com/viterin/vek/vek32"
)

// Player is the audio thread side of the engine. It owns the synth and the
// clock; everything it learns from the control thread comes through the
// broker. Process never blocks and, once its scratch buffer has grown to
// the block size, never allocates.
type Player struct {
	synth      p303.Synth
	broker     *Broker
	sampleRate float64

	clock   Clock
	playing bool
	params  p303.Params // the params the synth was last updated with
	frame   int64

	scratch, scratch2 []float32
}

// DefaultBlockSize is the block size the scratch buffers are sized for.
const DefaultBlockSize = 1024

func NewPlayer(broker *Broker, synth p303.Synth, sampleRate int) *Player {
	p := &Player{
		synth:      synth,
		broker:     broker,
		sampleRate: float64(sampleRate),
		scratch:    make([]float32, DefaultBlockSize),
		scratch2:   make([]float32, DefaultBlockSize),
	}
	p.params = broker.Pattern().Params
	synth.Update(p.params)
	return p
}

// Process renders audio into the whole buffer. Commands and knob changes
// are picked up at the start of the buffer; step data is read from the
// pattern snapshot at each step boundary.
func (p *Player) Process(buffer p303.AudioBuffer) {
	p.processMessages()
	if params := p.broker.Pattern().Params; params != p.params {
		p.params = params
		p.synth.Update(params)
	}
	rest := buffer
	for len(rest) > 0 {
		n := len(rest)
		if p.playing {
			until := p.clock.Until(p.broker.Pattern().Tempo, p.sampleRate)
			if until == 0 {
				p.advance()
				continue
			}
			n = min(n, until)
		}
		p.synth.Render(rest[:n])
		if p.playing {
			p.clock.Tick(n)
		}
		p.frame += int64(n)
		rest = rest[n:]
	}
	p.meter(buffer)
}

func (p *Player) advance() {
	step := p.clock.Advance()
	s := p.broker.Pattern().Steps[step]
	switch s.Gate {
	case p303.GateNote:
		p.synth.Trigger(s.Note(), s.Accent, s.Slide)
	case p303.GateTie:
		p.synth.Tie(s.Note())
	default:
		p.synth.Release()
	}
	p.broker.currentStep.Store(int32(step))
	TrySend(p.broker.ToModel, MsgToModel{HasStep: true, Step: step, Frame: p.frame, Playing: true})
}

func (p *Player) processMessages() {
loop:
	for {
		select {
		case cmd := <-p.broker.ToPlayer:
			switch cmd {
			case CommandStart:
				if p.playing {
					continue
				}
				p.playing = true
				p.clock.Start()
				p.broker.playing.Store(true)
			case CommandStop, CommandHardStop:
				if cmd == CommandHardStop {
					p.synth.Silence()
				} else {
					p.synth.Release()
				}
				if !p.playing {
					continue
				}
				p.playing = false
				p.broker.playing.Store(false)
				p.broker.currentStep.Store(-1)
				TrySend(p.broker.ToModel, MsgToModel{HasStep: true, Step: -1, Frame: p.frame})
			}
		default:
			break loop
		}
	}
}

// meter measures the left channel of the block with vek32 and reports it.
func (p *Player) meter(buffer p303.AudioBuffer) {
	n := len(buffer)
	if n == 0 {
		return
	}
	if len(p.scratch) < n {
		p.scratch = make([]float32, n)
		p.scratch2 = make([]float32, n)
	}
	x := p.scratch[:n]
	for i, v := range buffer {
		x[i] = v[0]
	}
	power := vek32.Mean(vek32.Mul_Into(p.scratch2[:n], x, x))
	vek32.Abs_Inplace(x)
	level := Level{Peak: vek32.Max(x), RMS: float32(math.Sqrt(float64(power)))}
	TrySend(p.broker.ToModel, MsgToModel{HasLevel: true, Level: level, Playing: p.playing})
}

// Frame returns the number of frames rendered so far.
func (p *Player) Frame() int64 { return p.frame }
