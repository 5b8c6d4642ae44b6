package tb303_test

import (
	"math"
	"testing"

	"github.com/pattern303/p303/tb303"
)

func TestEnvelopeAttack(t *testing.T) {
	var e tb303.Envelope
	e.Trigger(1, 10, tb303.DecayMultiplier(100, 1000))
	for i := 1; i <= 10; i++ {
		v := e.Next()
		if !almostEqual(v, float64(i)/10, 1e-12) {
			t.Fatalf("attack sample %d = %v, want %v", i, v, float64(i)/10)
		}
	}
	if e.Stage() != tb303.StageDecay {
		t.Fatalf("envelope should be decaying after the attack, got stage %v", e.Stage())
	}
}

func TestEnvelopeRetriggerIsContinuous(t *testing.T) {
	var e tb303.Envelope
	e.Trigger(1, 0, tb303.DecayMultiplier(50, 1000))
	for i := 0; i < 40; i++ {
		e.Next()
	}
	before := e.Level()
	e.Trigger(1.5, 20, tb303.DecayMultiplier(50, 1000))
	after := e.Next()
	if math.Abs(after-before) > 0.1 {
		t.Fatalf("retrigger jumped from %v to %v", before, after)
	}
	for i := 1; i < 20; i++ {
		e.Next()
	}
	if e.Level() != 1.5 {
		t.Fatalf("attack should end at the new peak, got %v", e.Level())
	}
}

func TestEnvelopeDecay(t *testing.T) {
	var e tb303.Envelope
	e.Trigger(1, 0, tb303.DecayMultiplier(100, 1000))
	for i := 0; i < 100; i++ {
		e.Next()
	}
	if !almostEqual(e.Level(), math.Exp(-1), 1e-9) {
		t.Fatalf("level after one time constant = %v, want %v", e.Level(), math.Exp(-1))
	}
}

func TestEnvelopeRelease(t *testing.T) {
	var e tb303.Envelope
	e.Trigger(1, 0, 1)
	e.Release(tb303.ReleaseMultiplier(10, 1000))
	for i := 0; i < 5; i++ {
		e.Next()
	}
	if !almostEqual(e.Level(), 0.01, 1e-9) {
		t.Fatalf("level half way through the release = %v, want 0.01", e.Level())
	}
	for i := 0; i < 7; i++ {
		e.Next()
	}
	if e.Stage() != tb303.StageIdle || e.Level() != 0 {
		t.Fatalf("release should end in silence, got stage %v level %v", e.Stage(), e.Level())
	}
}

func TestEnvelopeReleaseWhenIdle(t *testing.T) {
	var e tb303.Envelope
	e.Release(0.5)
	if e.Next() != 0 || e.Stage() != tb303.StageIdle {
		t.Fatalf("releasing an idle envelope should do nothing")
	}
}
