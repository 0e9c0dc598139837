// Package testutil holds deterministic signals and tolerance checks
// shared by the render core tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns length samples of amplitude*sin(2*pi*freqHz*n/sampleRate).
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return SineAt(freqHz, sampleRate, amplitude, 0, length)
}

// SineAt is Sine starting at phase cycles.
func SineAt(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*(freqHz*float64(i)/sampleRate+phase))
	}
	return out
}

// Noise returns uniform white noise in [-amplitude, amplitude). The same
// seed always gives the same samples.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse returns a unit impulse at pos; out-of-range positions give
// silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Constant returns length copies of value.
func Constant(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Planar builds a channel-per-slice buffer from gen.
func Planar(channels int, gen func(ch int) []float64) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = gen(ch)
	}
	return out
}

// Float32 converts samples for device-facing tests.
func Float32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
