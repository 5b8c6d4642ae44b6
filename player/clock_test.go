package player_test

import (
	"math"
	"testing"

	"github.com/pattern303/p303/player"
)

func TestClockFirstStepIsImmediate(t *testing.T) {
	var c player.Clock
	c.Start()
	if n := c.Until(120, 44100); n != 0 {
		t.Fatalf("expected the first boundary to be due immediately, got %d frames", n)
	}
	if step := c.Advance(); step != 0 {
		t.Fatalf("expected step 0, got %d", step)
	}
}

func TestClockBoundariesStayOnGrid(t *testing.T) {
	const tempo, rate = 120.0, 44100.0
	stepLen := player.StepLength(tempo, rate)
	if stepLen != 5512.5 {
		t.Fatalf("expected a step of 5512.5 frames, got %v", stepLen)
	}
	var c player.Clock
	c.Start()
	frame := 0
	for k := 0; k < 64; k++ {
		for {
			n := c.Until(tempo, rate)
			if n == 0 {
				break
			}
			n = min(n, 1000)
			c.Tick(n)
			frame += n
		}
		if d := math.Abs(float64(frame) - float64(k)*stepLen); d > 1 {
			t.Fatalf("boundary %d at frame %d, off by %v frames", k, frame, d)
		}
		if step := c.Advance(); step != k%16 {
			t.Fatalf("boundary %d started step %d", k, step)
		}
	}
}

func TestClockTempoIncreaseFiresOnce(t *testing.T) {
	const rate = 44100.0
	var c player.Clock
	c.Start()
	c.Until(60, rate)
	c.Advance()
	for frame := 0; frame < 10000; {
		n := min(c.Until(60, rate), 10000-frame)
		c.Tick(n)
		frame += n
	}
	if n := c.Until(300, rate); n != 0 {
		t.Fatalf("expected the overlong step to end at once, got %d frames", n)
	}
	if step := c.Advance(); step != 1 {
		t.Fatalf("expected step 1, got %d", step)
	}
	if n := c.Until(300, rate); n != 2205 {
		t.Fatalf("expected a full 2205 frame step after the change, got %d", n)
	}
}
