package osc

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-render/dsp/core"
)

// Waveform selects the table shape loaded by Init.
type Waveform int

const (
	// Sine loads a sinusoid.
	Sine Waveform = iota
	// Triangle loads a triangle.
	Triangle
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

const defaultPhaseOffset = 0.25

var (
	// ErrInvalidSampleRate is returned by Init for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("osc: invalid sample rate")
	// ErrInvalidFrequency is returned by Init for negative or non-finite frequencies.
	ErrInvalidFrequency = errors.New("osc: invalid frequency")
)

// Option configures an Oscillator.
type Option func(*Oscillator)

// WithWaveform selects the table shape.
func WithWaveform(w Waveform) Option {
	return func(o *Oscillator) {
		if w == Sine || w == Triangle {
			o.waveform = w
		}
	}
}

// WithTableSize sets the number of table entries.
func WithTableSize(n int) Option {
	return func(o *Oscillator) {
		if n >= 2 {
			o.tableSize = n
		}
	}
}

// WithPhaseOffset sets the right channel phase lead in cycles, wrapped to [0,1).
func WithPhaseOffset(cycles float64) Option {
	return func(o *Oscillator) {
		if core.IsFinite(cycles) {
			o.phaseOffset = cycles - math.Floor(cycles)
		}
	}
}

// Oscillator is a table-lookup LFO producing a phase-offset stereo pair.
type Oscillator struct {
	waveform    Waveform
	tableSize   int
	phaseOffset float64

	table      *WaveTable
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
}

// New returns an oscillator that must be initialized with Init.
func New(opts ...Option) *Oscillator {
	o := &Oscillator{
		waveform:    Sine,
		tableSize:   DefaultTableSize,
		phaseOffset: defaultPhaseOffset,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Init loads the wave table, sets the frequency and resets the phase.
func (o *Oscillator) Init(sampleRate, frequencyHz float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	if frequencyHz < 0 || !core.IsFinite(frequencyHz) {
		return fmt.Errorf("%w: %f", ErrInvalidFrequency, frequencyHz)
	}

	if o.table == nil || o.table.Len() != o.tableSize {
		table, err := NewWaveTable(o.tableSize)
		if err != nil {
			return err
		}
		o.table = table
	}
	switch o.waveform {
	case Triangle:
		o.table.Triangle()
	default:
		o.table.Sinusoid()
	}

	o.sampleRate = sampleRate
	o.phase = 0
	o.SetFrequency(frequencyHz)

	return nil
}

// Deinit drops the wave table. Samples returns zeros until Init is called.
func (o *Oscillator) Deinit() {
	o.table = nil
}

// Reset returns the phase to zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// SetFrequency changes the rate without touching the phase. Negative and
// non-finite values are ignored.
func (o *Oscillator) SetFrequency(hz float64) {
	if hz < 0 || !core.IsFinite(hz) || o.sampleRate <= 0 {
		return
	}
	o.frequency = hz
	o.phaseInc = hz / o.sampleRate
}

// Frequency returns the current rate in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Phase returns the current phase in cycles [0,1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Waveform returns the configured table shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// PhaseOffset returns the right channel phase lead in cycles.
func (o *Oscillator) PhaseOffset() float64 { return o.phaseOffset }

// Samples returns the left and right modulation values for the current
// phase, both in [-1, 1], then advances by one sample period.
func (o *Oscillator) Samples() (left, right float64) {
	if o.table == nil {
		return 0, 0
	}

	left = o.table.Interpolate(o.phase)
	right = o.table.Interpolate(o.phase + o.phaseOffset)

	o.phase += o.phaseInc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}

	return left, right
}
