package delay

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/interp"
)

// interpolation margin: one slot for the write head plus the x1/x2 taps.
const fractionalMargin = 4

var (
	// ErrInvalidSampleRate is returned by Init for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("delay: invalid sample rate")
	// ErrInvalidMaxDelay is returned by Init for non-positive or non-finite max delays.
	ErrInvalidMaxDelay = errors.New("delay: invalid max delay")
)

// Fractional is a variable delay with sub-sample read-out.
//
// The delay time is stored atomically, so SetDelayMs may be called from
// any goroutine while Push runs on the render goroutine. Push never
// allocates.
type Fractional struct {
	line       *Line
	mode       interp.Mode
	sampleRate float64
	maxDelayMs float64
	maxSamples float64

	delaySamples atomic.Uint64
}

// NewFractional returns an uninitialized fractional delay line. Linear
// interpolation is the default; Init must be called before Push.
func NewFractional(opts ...Option) *Fractional {
	cfg := applyOptions(interp.Linear, opts)
	return &Fractional{mode: cfg.mode}
}

// Init sizes the buffer to hold maxDelayMs of audio at sampleRate and
// clears all history. The current delay is reset to zero.
func (f *Fractional) Init(sampleRate, maxDelayMs float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	if maxDelayMs <= 0 || !core.IsFinite(maxDelayMs) {
		return fmt.Errorf("%w: %f ms", ErrInvalidMaxDelay, maxDelayMs)
	}

	maxSamples := math.Ceil(core.MsToSamples(maxDelayMs, sampleRate))
	size := int(maxSamples) + fractionalMargin

	if f.line != nil && f.line.Len() == size {
		f.line.Reset()
	} else {
		line, err := New(size, WithMode(f.mode))
		if err != nil {
			return err
		}
		f.line = line
	}

	f.sampleRate = sampleRate
	f.maxDelayMs = maxDelayMs
	f.maxSamples = maxSamples
	f.delaySamples.Store(0)

	return nil
}

// Deinit releases buffer storage. Push returns 0 until Init is called again.
func (f *Fractional) Deinit() {
	f.line = nil
	f.maxSamples = 0
	f.delaySamples.Store(0)
}

// Ready reports whether Init succeeded and Deinit has not been called since.
func (f *Fractional) Ready() bool {
	return f.line != nil
}

// Reset clears the delay history without releasing storage.
func (f *Fractional) Reset() {
	if f.line != nil {
		f.line.Reset()
	}
}

// SetDelayMs updates the read offset, clamped to [0, max delay].
// NaN is ignored.
func (f *Fractional) SetDelayMs(ms float64) {
	f.SetDelaySamples(core.MsToSamples(ms, f.sampleRate))
}

// SetDelaySamples updates the read offset in samples, clamped to
// [0, max delay]. NaN is ignored.
func (f *Fractional) SetDelaySamples(samples float64) {
	if math.IsNaN(samples) {
		return
	}
	samples = core.Clamp(samples, 0, f.maxSamples)
	f.delaySamples.Store(math.Float64bits(samples))
}

// DelaySamples returns the current delay in samples.
func (f *Fractional) DelaySamples() float64 {
	return math.Float64frombits(f.delaySamples.Load())
}

// DelayMs returns the current delay in milliseconds.
func (f *Fractional) DelayMs() float64 {
	return core.SamplesToMs(f.DelaySamples(), f.sampleRate)
}

// MaxDelayMs returns the configured maximum delay.
func (f *Fractional) MaxDelayMs() float64 {
	return f.maxDelayMs
}

// Mode returns the interpolation mode.
func (f *Fractional) Mode() interp.Mode {
	return f.mode
}

// Push writes sample at the write cursor and returns the input from
// DelaySamples() pushes ago, interpolated at the fractional position.
// A delay of zero returns sample itself.
func (f *Fractional) Push(sample float64) float64 {
	if f.line == nil {
		return 0
	}
	f.line.Write(sample)
	return f.line.ReadFractional(f.DelaySamples() + 1)
}
