package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// DefaultSampleRate is the rate keyword-spotting models are trained at.
const DefaultSampleRate = 16000

// ErrOddLength is returned when raw PCM16 bytes do not hold whole samples.
var ErrOddLength = errors.New("pcm: odd byte length for 16-bit samples")

// Buffer is an immutable clip of signed 16-bit mono samples at a fixed
// sample rate.
//
// The zero value is an empty clip at 0 Hz. Buffers are passed by value; the
// backing slice is shared and must not be modified after construction.
type Buffer struct {
	samples []int16
	rate    int
}

// NewBuffer creates a Buffer holding a copy of samples.
func NewBuffer(samples []int16, sampleRate int) Buffer {
	return Buffer{samples: append([]int16(nil), samples...), rate: sampleRate}
}

// Wrap creates a Buffer that takes ownership of samples without copying.
// The caller must not modify samples afterwards.
func Wrap(samples []int16, sampleRate int) Buffer {
	return Buffer{samples: samples, rate: sampleRate}
}

// FromBytes decodes little-endian PCM16 bytes into a Buffer.
func FromBytes(data []byte, sampleRate int) (Buffer, error) {
	if len(data)%2 != 0 {
		return Buffer{}, fmt.Errorf("%w: %d bytes", ErrOddLength, len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return Buffer{samples: samples, rate: sampleRate}, nil
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.samples)
}

// SampleRate returns the sample rate in Hz.
func (b Buffer) SampleRate() int {
	return b.rate
}

// Samples returns the backing samples. The slice must be treated as
// read-only.
func (b Buffer) Samples() []int16 {
	return b.samples
}

// Duration returns the playback length of the clip.
func (b Buffer) Duration() time.Duration {
	if b.rate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.rate)
}

// Seconds converts a sample offset into seconds from the clip start.
func (b Buffer) Seconds(offset int) float64 {
	if b.rate <= 0 {
		return 0
	}
	return float64(offset) / float64(b.rate)
}

// Bytes encodes the clip as little-endian PCM16.
func (b Buffer) Bytes() []byte {
	out := make([]byte, len(b.samples)*2)
	for i, s := range b.samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Float32 returns the samples normalized to [-1, 1).
func (b Buffer) Float32() []float32 {
	out := make([]float32, len(b.samples))
	for i, s := range b.samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// FromFloat32 converts normalized samples back to PCM16, saturating values
// outside [-1, 1].
func FromFloat32(samples []float32, sampleRate int) Buffer {
	out := make([]int16, len(samples))
	for i, s := range samples {
		switch {
		case s >= 1:
			out[i] = 32767
		case s <= -1:
			out[i] = -32768
		default:
			out[i] = int16(s * 32768.0)
		}
	}
	return Buffer{samples: out, rate: sampleRate}
}
