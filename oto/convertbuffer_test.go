package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/oto"
)

func TestFloatBufferTo16BitLE(t *testing.T) {
	buf := p303.AudioBuffer{{0, 1}, {-1, 0.5}, {2, -3}}
	out := oto.FloatBufferTo16BitLE(buf, nil)
	want := []int16{0, math.MaxInt16, -math.MaxInt16, 16383, math.MaxInt16, -math.MaxInt16}
	if len(out) != 2*len(want) {
		t.Fatalf("expected %d bytes, got %d", 2*len(want), len(out))
	}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(out[2*i:])); got != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestFloatBufferTo32BitFloatLE(t *testing.T) {
	buf := p303.AudioBuffer{{0.25, -0.75}, {1.5, 0}}
	scratch := make([]byte, 0, 64)
	out := oto.FloatBufferTo32BitFloatLE(buf, scratch)
	want := []float32{0.25, -0.75, 1.5, 0}
	if len(out) != 4*len(want) {
		t.Fatalf("expected %d bytes, got %d", 4*len(want), len(out))
	}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(out[4*i:])); got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}
	if &out[0] != &scratch[:1][0] {
		t.Errorf("expected the output to reuse the given buffer")
	}
}
