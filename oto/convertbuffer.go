package oto

import (
	"encoding/binary"
	"math"

	"github.com/pattern303/p303"
)

// FloatBufferTo16BitLE converts the stereo buffer to interleaved 16-bit
// little-endian integers, appending to out. Samples outside [-1, 1] are
// clipped.
func FloatBufferTo16BitLE(buff p303.AudioBuffer, out []byte) []byte {
	for _, frame := range buff {
		for _, v := range frame {
			var uv int16
			if v < -1.0 {
				uv = -math.MaxInt16
			} else if v > 1.0 {
				uv = math.MaxInt16
			} else {
				uv = int16(v * math.MaxInt16)
			}
			out = binary.LittleEndian.AppendUint16(out, uint16(uv))
		}
	}
	return out
}

// FloatBufferTo32BitFloatLE converts the stereo buffer to interleaved
// 32-bit little-endian floats, appending to out.
func FloatBufferTo32BitFloatLE(buff p303.AudioBuffer, out []byte) []byte {
	for _, frame := range buff {
		for _, v := range frame {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out
}
