package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-render/dsp/interp"
)

// Option configures a Line or Fractional at construction.
type Option func(*config)

type config struct {
	mode interp.Mode
}

// WithMode selects the fractional interpolation algorithm.
func WithMode(mode interp.Mode) Option {
	return func(cfg *config) {
		if mode.Valid() {
			cfg.mode = mode
		}
	}
}

func applyOptions(def interp.Mode, opts []Option) config {
	cfg := config{mode: def}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Line is a circular delay line.
//
// Delays are counted from the write head: Read(1) returns the most
// recently written sample, Read(2) the one before it, and so on.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// New returns a delay line of fixed size. Fractional reads default to
// Hermite interpolation.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	cfg := applyOptions(interp.Hermite, opts)
	return &Line{buffer: make([]float64, size), mode: cfg.mode}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the interpolation mode used by ReadFractional.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	readPos := (d.writePos - delay%size + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay using the configured mode.
// The delay is clamped to [1, Len()-3].
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size < 4 {
		if size == 0 {
			return 0
		}
		return d.Read(1)
	}
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	}
	maxDelay := float64(size - 3)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	if d.mode == interp.Linear {
		return interp.Linear2(t, x0, x1)
	}

	// Nothing newer than the write head exists; mirror x0 at the edge.
	xm1 := x0
	if p > 1 {
		xm1 = d.Read(p - 1)
	}
	x2 := d.Read(p + 2)
	return interp.At(d.mode, t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
