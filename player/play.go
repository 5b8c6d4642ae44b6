package player

import (
	"fmt"
	"math"

	"github.com/pattern303/p303"
)

// Play renders the pattern offline, repeated loops times, and returns the
// audio. The buffer ends exactly at the end of the last loop.
func Play(synth p303.Synth, pattern p303.Pattern, loops, sampleRate int) (p303.AudioBuffer, error) {
	return PlayBlocks(synth, pattern, loops, sampleRate, DefaultBlockSize)
}

// PlayBlocks is like Play, but processes the audio in blocks of blockSize
// frames, like an audio driver would.
func PlayBlocks(synth p303.Synth, pattern p303.Pattern, loops, sampleRate, blockSize int) (p303.AudioBuffer, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if loops < 1 {
		return nil, fmt.Errorf("cannot play a pattern %d times", loops)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("invalid block size %d", blockSize)
	}
	broker := NewBroker(pattern)
	player := NewPlayer(broker, synth, sampleRate)
	length := int(math.Ceil(float64(loops*p303.NumSteps) * StepLength(pattern.Tempo, float64(sampleRate))))
	buffer := make(p303.AudioBuffer, length)
	if !TrySend(broker.ToPlayer, CommandStart) {
		return nil, ErrQueueFull
	}
	for i := 0; i < length; i += blockSize {
		player.Process(buffer[i:min(i+blockSize, length)])
		drain(broker.ToModel)
	}
	return buffer, nil
}

func drain[T any](c <-chan T) {
	for {
		select {
		case <-c:
		default:
			return
		}
	}
}
