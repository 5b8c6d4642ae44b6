package p303

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Raw converts an AudioBuffer into a raw data byte buffer. If pcm16 is set to
// true, the samples are converted to 16-bit signed integers; otherwise they
// are written as float32. Stereo channels are interleaved, little endian.
func (buffer AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	if pcm16 {
		int16data := make([][2]int16, len(buffer))
		for i, v := range buffer {
			int16data[i] = [2]int16{toInt16(v[0]), toInt16(v[1])}
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWav encodes the buffer as a stereo integer PCM .wav file. bitDepth is
// 16, 24 or 32.
func (buffer AudioBuffer) WriteWav(w io.WriteSeeker, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported wav bit depth %d", bitDepth)
	}
	scale := float64(int64(1)<<(bitDepth-1) - 1)
	data := make([]int, 0, 2*len(buffer))
	for _, v := range buffer {
		data = append(data, toInt(v[0], scale), toInt(v[1], scale))
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 2, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 2},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("could not encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finish wav: %w", err)
	}
	return nil
}

func toInt16(v float32) int16 {
	return int16(toInt(v, math.MaxInt16))
}

func toInt(v float32, scale float64) int {
	return int(clamp(float64(v), -1, 1) * scale)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
