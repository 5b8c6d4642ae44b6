package oto

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pattern303/p303"
)

type (
	// Context is the audio output. oto allows only one context per process.
	Context struct {
		context *oto.Context
		pcm16   bool
	}

	// Playback is a running stream from a fill function to the output.
	Playback struct {
		player *oto.Player
		reader *fillReader
	}

	fillReader struct {
		fill   func(buf p303.AudioBuffer) error
		pcm16  bool
		buffer p303.AudioBuffer
		bytes  []byte

		mu     sync.Mutex
		err    error
		closed bool
		done   chan struct{}
	}
)

// DefaultBufferDuration is the output buffer length used when none is given.
const DefaultBufferDuration = 50 * time.Millisecond

// NewContext opens the default audio device. If pcm16 is true, the device is
// fed 16-bit integers, otherwise 32-bit floats.
func NewContext(sampleRate int, bufferDuration time.Duration, pcm16 bool) (*Context, error) {
	if bufferDuration <= 0 {
		bufferDuration = DefaultBufferDuration
	}
	format := oto.FormatFloat32LE
	if pcm16 {
		format = oto.FormatSignedInt16LE
	}
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       format,
		BufferSize:   bufferDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, pcm16: pcm16}, nil
}

// Play starts pulling audio from fill. Playback ends when fill returns an
// error or the returned Playback is closed.
func (c *Context) Play(fill func(buf p303.AudioBuffer) error) p303.CloserWaiter {
	r := &fillReader{fill: fill, pcm16: c.pcm16, done: make(chan struct{})}
	player := c.context.NewPlayer(r)
	player.Play()
	return &Playback{player: player, reader: r}
}

// Close stops the playback. Buffered audio is discarded.
func (p *Playback) Close() error {
	p.reader.finish(nil)
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait blocks until the fill function has run out of audio and the output
// has played everything it was given, or the playback is closed.
func (p *Playback) Wait() error {
	<-p.reader.done
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return p.reader.result()
}

func (r *fillReader) Read(b []byte) (int, error) {
	if r.isClosed() {
		return 0, io.EOF
	}
	frameSize := 8
	if r.pcm16 {
		frameSize = 4
	}
	frames := len(b) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buffer) < frames {
		r.buffer = make(p303.AudioBuffer, frames)
	}
	buf := r.buffer[:frames]
	err := r.fill(buf)
	if r.pcm16 {
		r.bytes = FloatBufferTo16BitLE(buf, r.bytes[:0])
	} else {
		r.bytes = FloatBufferTo32BitFloatLE(buf, r.bytes[:0])
	}
	n := copy(b, r.bytes)
	if err != nil {
		if errors.Is(err, p303.ErrEndOfBuffer) {
			err = nil
		}
		r.finish(err)
		return n, io.EOF
	}
	return n, nil
}

func (r *fillReader) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.err = err
	close(r.done)
}

func (r *fillReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *fillReader) result() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
