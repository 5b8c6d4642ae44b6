package player_test

import (
	"errors"
	"testing"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/player"
)

type fakeContext struct {
	fill   func(buf p303.AudioBuffer) error
	closed bool
}

func (c *fakeContext) Play(fill func(buf p303.AudioBuffer) error) p303.CloserWaiter {
	c.fill = fill
	return c
}

func (c *fakeContext) Close() error { c.closed = true; return nil }
func (c *fakeContext) Wait() error  { return nil }

func TestEngineStartRetriesAudio(t *testing.T) {
	errNoDevice := errors.New("no device")
	ctx := &fakeContext{}
	attempts := 0
	open := func() (p303.AudioContext, error) {
		attempts++
		if attempts == 1 {
			return nil, errNoDevice
		}
		return ctx, nil
	}
	rec := &recorder{}
	e, err := player.NewEngine(rec, p303.DefaultPattern(), testRate, open)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	err = e.Start()
	if !errors.Is(err, player.ErrAudioUnavailable) || !errors.Is(err, errNoDevice) {
		t.Fatalf("expected the audio error, got %v", err)
	}
	if e.Playing() || e.CurrentStep() != -1 {
		t.Fatalf("expected the engine to stay stopped")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	buf := make(p303.AudioBuffer, 256)
	if err := ctx.fill(buf); err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if e.CurrentStep() != 0 || len(rec.events) != 1 {
		t.Fatalf("expected step 0 to play after start, got step %d", e.CurrentStep())
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ctx.closed {
		t.Fatalf("expected the playback to be closed")
	}
}

func TestEngineRejectsInvalidPattern(t *testing.T) {
	pattern := p303.DefaultPattern()
	pattern.Steps = pattern.Steps[:8]
	_, err := player.NewEngine(&recorder{}, pattern, testRate, nil)
	if !errors.Is(err, p303.ErrStepCount) {
		t.Fatalf("expected ErrStepCount, got %v", err)
	}
}

// closingContext is an audio output that can be closed on its own.
type closingContext struct {
	opens, closes int
	playback      fakeContext
}

func (c *closingContext) Play(fill func(buf p303.AudioBuffer) error) p303.CloserWaiter {
	return c.playback.Play(fill)
}

func (c *closingContext) Close() error { c.closes++; return nil }

func TestEngineCloseReleasesAudio(t *testing.T) {
	ctx := &closingContext{}
	open := func() (p303.AudioContext, error) {
		ctx.opens++
		return ctx, nil
	}
	e, err := player.NewEngine(&recorder{}, p303.DefaultPattern(), testRate, open)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ctx.playback.closed || ctx.closes != 1 {
		t.Fatalf("expected the playback and the output to be closed, got %v and %d closes", ctx.playback.closed, ctx.closes)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start after Close failed: %v", err)
	}
	if ctx.opens != 2 {
		t.Fatalf("expected the output to be opened again, got %d opens", ctx.opens)
	}
}

func TestEngineCloseReportsFullQueue(t *testing.T) {
	ctx := &fakeContext{}
	open := func() (p303.AudioContext, error) { return ctx, nil }
	e, err := player.NewEngine(&recorder{}, p303.DefaultPattern(), testRate, open)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for e.Stop() == nil {
	}
	err = e.Close()
	if !errors.Is(err, player.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull from Close, got %v", err)
	}
	if !ctx.closed {
		t.Fatalf("expected the playback to be closed anyway")
	}
}
