package player

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pattern303/p303"
)

// Controller is the control thread side of the engine. Every setter
// validates its input before touching any state, then publishes a fresh
// copy of the whole pattern; the player picks up knob changes at its next
// block and step data at the next step boundary. A Controller is safe for
// concurrent use.
type Controller struct {
	broker *Broker

	mu      sync.Mutex
	pattern p303.Pattern
}

var ErrQueueFull = errors.New("player command queue is full")

func NewController(broker *Broker) *Controller {
	return &Controller{broker: broker, pattern: broker.Pattern().Copy()}
}

// Start starts the sequencer from step 0. Starting a running sequencer
// does nothing.
func (c *Controller) Start() error { return c.send(CommandStart) }

// Stop stops the sequencer and lets the sounding note fade out.
func (c *Controller) Stop() error { return c.send(CommandStop) }

// HardStop stops the sequencer and silences the voice immediately.
func (c *Controller) HardStop() error { return c.send(CommandHardStop) }

func (c *Controller) send(cmd Command) error {
	if !TrySend(c.broker.ToPlayer, cmd) {
		return ErrQueueFull
	}
	return nil
}

func (c *Controller) SetPattern(p p303.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pattern = p.Copy()
	c.broker.Publish(c.pattern)
	return nil
}

// SetStep replaces step index (0..15).
func (c *Controller) SetStep(index int, step p303.Step) error {
	if index < 0 || index >= p303.NumSteps {
		return fmt.Errorf("%w: step index %d, want 0..%d", p303.ErrStepRange, index, p303.NumSteps-1)
	}
	if err := step.Validate(); err != nil {
		return err
	}
	return c.modify(func(p *p303.Pattern) { p.Steps[index] = step })
}

func (c *Controller) SetTempo(bpm float64) error {
	if err := p303.ValidateTempo(bpm); err != nil {
		return err
	}
	return c.modify(func(p *p303.Pattern) { p.Tempo = bpm })
}

func (c *Controller) SetWaveform(w p303.Waveform) error {
	if w != p303.Saw && w != p303.Square {
		return fmt.Errorf("%w: unknown waveform %d", p303.ErrParamRange, int(w))
	}
	return c.modify(func(p *p303.Pattern) { p.Waveform = w })
}

func (c *Controller) SetCutoff(v float64) error {
	return c.setKnob("cutoff", v, func(p *p303.Params) *float64 { return &p.Cutoff })
}

func (c *Controller) SetResonance(v float64) error {
	return c.setKnob("resonance", v, func(p *p303.Params) *float64 { return &p.Resonance })
}

func (c *Controller) SetEnvMod(v float64) error {
	return c.setKnob("envmod", v, func(p *p303.Params) *float64 { return &p.EnvMod })
}

func (c *Controller) SetDecay(v float64) error {
	return c.setKnob("decay", v, func(p *p303.Params) *float64 { return &p.Decay })
}

func (c *Controller) SetAccentAmount(v float64) error {
	return c.setKnob("accent", v, func(p *p303.Params) *float64 { return &p.Accent })
}

func (c *Controller) setKnob(name string, v float64, field func(*p303.Params) *float64) error {
	if err := p303.ValidateKnob(name, v); err != nil {
		return err
	}
	return c.modify(func(p *p303.Pattern) { *field(&p.Params) = v })
}

func (c *Controller) modify(f func(p *p303.Pattern)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.pattern.Copy()
	f(&next)
	c.pattern = next
	c.broker.Publish(next)
	return nil
}

// CurrentStep returns the step being played, -1 when stopped.
func (c *Controller) CurrentStep() int { return c.broker.CurrentStep() }

// Playing tells if the sequencer is running. It reflects commands once the
// player has processed them.
func (c *Controller) Playing() bool { return c.broker.Playing() }

// Pattern returns a copy of the current pattern.
func (c *Controller) Pattern() p303.Pattern {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pattern.Copy()
}

// Messages returns the channel the player reports step changes and levels
// on. Messages are dropped when nobody reads them.
func (c *Controller) Messages() <-chan MsgToModel { return c.broker.ToModel }
