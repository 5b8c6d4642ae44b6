package player

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/pattern303/p303"
)

// Engine is a complete sequencer and voice playing on an audio output. The
// output is opened lazily by the first Start; if that fails, the engine
// stays stopped and Start can be retried. Independent engines share
// nothing but read-only wavetables.
type Engine struct {
	*Controller
	player *Player
	open   func() (p303.AudioContext, error)

	mu       sync.Mutex
	context  p303.AudioContext
	playback p303.CloserWaiter
}

var ErrAudioUnavailable = errors.New("audio output unavailable")

// NewEngine creates a stopped engine playing pattern with synth. open is
// called to acquire the audio output when the engine is first started.
func NewEngine(synth p303.Synth, pattern p303.Pattern, sampleRate int, open func() (p303.AudioContext, error)) (*Engine, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	broker := NewBroker(pattern)
	return &Engine{
		Controller: NewController(broker),
		player:     NewPlayer(broker, synth, sampleRate),
		open:       open,
	}, nil
}

// Start opens the audio output if needed and starts the sequencer.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback == nil {
		if e.context == nil {
			context, err := e.open()
			if err != nil {
				log.Printf("could not open audio output: %v", err)
				return fmt.Errorf("%w: %w", ErrAudioUnavailable, err)
			}
			e.context = context
		}
		e.playback = e.context.Play(e.fill)
	}
	return e.Controller.Start()
}

func (e *Engine) fill(buf p303.AudioBuffer) error {
	e.player.Process(buf)
	return nil
}

// Close silences the engine and stops the playback. If the audio context
// is an io.Closer, it is closed too and the next Start opens a new one.
// The engine can be started again afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var errs []error
	if e.playback != nil {
		if err := e.Controller.HardStop(); err != nil {
			errs = append(errs, fmt.Errorf("cannot stop the player: %w", err))
		}
		if err := e.playback.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cannot close audio playback: %w", err))
		}
		e.playback = nil
	}
	if c, ok := e.context.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cannot close audio output: %w", err))
		}
		e.context = nil
	}
	return errors.Join(errs...)
}
