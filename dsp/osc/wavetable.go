package osc

import (
	"fmt"
	"math"
)

// DefaultTableSize is the number of entries used by Sinusoid and Triangle
// when no size is given.
const DefaultTableSize = 4096

// WaveTable holds one cycle of a periodic waveform.
type WaveTable struct {
	samples []float64
}

// NewWaveTable returns a zeroed table of size entries.
func NewWaveTable(size int) (*WaveTable, error) {
	if size < 2 {
		return nil, fmt.Errorf("osc: wave table size must be >= 2: %d", size)
	}
	return &WaveTable{samples: make([]float64, size)}, nil
}

// Len returns the number of entries.
func (w *WaveTable) Len() int {
	return len(w.samples)
}

// Samples exposes the raw table entries.
func (w *WaveTable) Samples() []float64 {
	return w.samples
}

// Sinusoid fills the table with one cycle of sin(2*pi*x).
func (w *WaveTable) Sinusoid() {
	n := float64(len(w.samples))
	for i := range w.samples {
		w.samples[i] = math.Sin(2 * math.Pi * float64(i) / n)
	}
}

// Triangle fills the table with a triangle starting at 0, peaking at +1 a
// quarter cycle in and reaching -1 at three quarters, so it is in phase
// with Sinusoid.
func (w *WaveTable) Triangle() {
	n := float64(len(w.samples))
	for i := range w.samples {
		x := float64(i) / n
		switch {
		case x < 0.25:
			w.samples[i] = 4 * x
		case x < 0.75:
			w.samples[i] = 2 - 4*x
		default:
			w.samples[i] = 4*x - 4
		}
	}
}

// Interpolate returns the table value at phase (in cycles), linearly
// interpolated between the two nearest entries. Phase wraps.
func (w *WaveTable) Interpolate(phase float64) float64 {
	n := len(w.samples)
	if n == 0 {
		return 0
	}

	phase -= math.Floor(phase)
	pos := phase * float64(n)
	i := int(pos)
	if i >= n {
		i = 0
		pos = 0
	}
	frac := pos - float64(i)

	next := i + 1
	if next == n {
		next = 0
	}

	return w.samples[i] + frac*(w.samples[next]-w.samples[i])
}
