package player

import (
	"sync/atomic"
	"time"

	"github.com/pattern303/p303"
)

type (
	// Broker connects the control thread and the audio thread. The pattern
	// is published as an immutable snapshot through an atomic pointer, so
	// the audio thread always sees a whole pattern. Transport commands go
	// to the player over ToPlayer; the player reports back over ToModel.
	// Neither side ever blocks on the other.
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan Command

		pattern     atomic.Pointer[p303.Pattern]
		currentStep atomic.Int32
		playing     atomic.Bool
	}

	// MsgToModel is a message from the player. It is a plain value so that
	// sending it does not allocate.
	MsgToModel struct {
		HasStep bool
		Step    int   // step that just started, -1 when stopped
		Frame   int64 // frames rendered by the player before the step started
		Playing bool

		HasLevel bool
		Level    Level
	}

	// Level is the loudness of the last rendered block.
	Level struct {
		Peak float32
		RMS  float32
	}

	Command int
)

const (
	CommandStart Command = iota
	CommandStop
	CommandHardStop
)

const channelSize = 1024

func NewBroker(pattern p303.Pattern) *Broker {
	b := &Broker{
		ToModel:  make(chan MsgToModel, channelSize),
		ToPlayer: make(chan Command, channelSize),
	}
	b.Publish(pattern)
	b.currentStep.Store(-1)
	return b
}

// Publish makes a private copy of the pattern visible to the player.
func (b *Broker) Publish(pattern p303.Pattern) {
	p := pattern.Copy()
	b.pattern.Store(&p)
}

// Pattern returns the published snapshot. It must not be modified.
func (b *Broker) Pattern() *p303.Pattern {
	return b.pattern.Load()
}

// CurrentStep returns the step the player is on, -1 when stopped.
func (b *Broker) CurrentStep() int {
	return int(b.currentStep.Load())
}

// Playing tells if the player is running the sequencer.
func (b *Broker) Playing() bool {
	return b.playing.Load()
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
