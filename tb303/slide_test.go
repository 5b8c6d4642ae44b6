package tb303_test

import (
	"math"
	"testing"

	"github.com/pattern303/p303/tb303"
)

func TestGlideWithoutPitchJumps(t *testing.T) {
	var g tb303.Glide
	g.GlideTo(440, 100)
	if g.Gliding() || g.Next() != 440 {
		t.Fatalf("first glide should jump to the target")
	}
}

func TestGlideIsMonotonicAndExact(t *testing.T) {
	for _, target := range []float64{440, 110} {
		var g tb303.Glide
		g.Jump(220)
		g.GlideTo(target, 100)
		prev := 220.0
		for i := 1; i <= 100; i++ {
			f := g.Next()
			if (target > 220 && f < prev) || (target < 220 && f > prev) {
				t.Fatalf("glide to %v not monotonic at sample %d: %v after %v", target, i, f, prev)
			}
			if i == 50 {
				mid := math.Sqrt(220 * target)
				if !almostEqual(f, mid, 1e-9*mid) {
					t.Fatalf("glide should be linear in pitch: half way %v, want %v", f, mid)
				}
			}
			prev = f
		}
		if prev != target || g.Gliding() {
			t.Fatalf("glide should end exactly on %v, got %v", target, prev)
		}
		if g.Next() != target {
			t.Fatalf("frequency should stay on target after the glide")
		}
	}
}

func TestGlideReset(t *testing.T) {
	var g tb303.Glide
	g.Jump(100)
	g.Reset()
	if g.HasPitch() {
		t.Fatalf("reset glide should have no pitch")
	}
}
