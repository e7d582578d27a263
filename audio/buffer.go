// Package audio holds the synthesized sample buffer and its WAV codec.
package audio

import (
	"math"
	"time"
)

// Buffer is an immutable sequence of mono samples in [-1, 1] at a fixed
// rate. Accessors return copies.
type Buffer struct {
	samples    []float64
	sampleRate int
}

// NewBuffer copies samples into a new buffer.
func NewBuffer(samples []float64, sampleRate int) *Buffer {
	s := make([]float64, len(samples))
	copy(s, samples)
	return &Buffer{samples: s, sampleRate: sampleRate}
}

// wrap takes ownership of samples without copying.
func wrap(samples []float64, sampleRate int) *Buffer {
	return &Buffer{samples: samples, sampleRate: sampleRate}
}

// Samples returns a copy of the samples.
func (b *Buffer) Samples() []float64 {
	s := make([]float64, len(b.samples))
	copy(s, b.samples)
	return s
}

// At returns sample i.
func (b *Buffer) At(i int) float64 { return b.samples[i] }

// SampleRate returns the rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Duration returns the playback length.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.sampleRate)
}

// PCM16 converts the samples to clamped 16-bit integers.
func (b *Buffer) PCM16() []int16 {
	out := make([]int16, len(b.samples))
	for i, s := range b.samples {
		out[i] = toInt16(s)
	}
	return out
}

// Equal reports whether two buffers hold identical samples at the same rate.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.sampleRate != o.sampleRate || len(b.samples) != len(o.samples) {
		return false
	}
	for i := range b.samples {
		if math.Float64bits(b.samples[i]) != math.Float64bits(o.samples[i]) {
			return false
		}
	}
	return true
}

// Resample converts b to rate using linear interpolation. The result has
// round(Len * rate / SampleRate) samples, and at least one when b is not
// empty. The same buffer is returned when the rate already matches.
func (b *Buffer) Resample(rate int) *Buffer {
	if rate == b.sampleRate || rate <= 0 || b.sampleRate <= 0 {
		return b
	}
	n := int(math.Round(float64(len(b.samples)) * float64(rate) / float64(b.sampleRate)))
	if n == 0 && len(b.samples) > 0 {
		n = 1
	}
	return wrap(resample(b.samples, float64(b.sampleRate)/float64(rate), n), rate)
}

// resample reads samples at a stride of step input samples per output
// sample, interpolating linearly.
func resample(samples []float64, step float64, newLen int) []float64 {
	origLen := len(samples)
	if origLen == 0 || newLen <= 0 {
		return []float64{}
	}
	result := make([]float64, newLen)
	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) * step
		idx0 := int(srcIdx)
		frac := srcIdx - float64(idx0)

		if idx0+1 < origLen {
			result[i] = samples[idx0]*(1.0-frac) + samples[idx0+1]*frac
		} else if idx0 < origLen {
			result[i] = samples[idx0]
		} else {
			result[i] = samples[origLen-1]
		}
	}
	return result
}

func toInt16(s float64) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(math.Round(s * 32767))
}
