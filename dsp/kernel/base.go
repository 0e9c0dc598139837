package kernel

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-render/dsp/core"
)

// MaxChannels is the widest layout a kernel accepts.
const MaxChannels = 2

var (
	// ErrInvalidSampleRate is returned by Init for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("kernel: invalid sample rate")
	// ErrInvalidChannelCount is returned by Init for channel counts outside [1, MaxChannels].
	ErrInvalidChannelCount = errors.New("kernel: invalid channel count")
)

// Base carries the lifecycle flags and buffer bindings shared by all
// kernels. Effects embed it and override the DSP methods.
type Base struct {
	channels   int
	sampleRate float64

	in  [][]float64
	out [][]float64

	setUp   atomic.Bool
	playing atomic.Bool
}

// ValidateFormat checks a channel count and sample rate.
func ValidateFormat(channels int, sampleRate float64) error {
	if channels < 1 || channels > MaxChannels {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidChannelCount, channels, MaxChannels)
	}
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	return nil
}

// Init validates and stores the format and marks the kernel set up.
func (b *Base) Init(channels int, sampleRate float64) error {
	if err := ValidateFormat(channels, sampleRate); err != nil {
		b.setUp.Store(false)
		return err
	}
	b.channels = channels
	b.sampleRate = sampleRate
	b.setUp.Store(true)
	return nil
}

// Deinit clears the set-up flag and drops buffer bindings.
func (b *Base) Deinit() {
	b.setUp.Store(false)
	b.in, b.out = nil, nil
}

// SetBuffers binds planar buffers for the next Process calls.
func (b *Base) SetBuffers(in, out [][]float64) {
	b.in, b.out = in, out
}

// Buffers returns the currently bound buffers.
func (b *Base) Buffers() (in, out [][]float64) {
	return b.in, b.out
}

// Channels returns the configured channel count.
func (b *Base) Channels() int { return b.channels }

// SampleRate returns the configured sample rate.
func (b *Base) SampleRate() float64 { return b.sampleRate }

// Start marks the kernel as playing.
func (b *Base) Start() { b.playing.Store(true) }

// Stop marks the kernel as stopped; Process passes input through.
func (b *Base) Stop() { b.playing.Store(false) }

// IsPlaying reports whether Start was called more recently than Stop.
func (b *Base) IsPlaying() bool { return b.playing.Load() }

// IsSetUp reports whether Init succeeded and Deinit has not been called since.
func (b *Base) IsSetUp() bool { return b.setUp.Load() }

// Active reports whether Process should run DSP: set up, playing and
// with output buffers bound.
func (b *Base) Active() bool {
	return b.IsSetUp() && b.IsPlaying() && len(b.out) > 0
}

// Span clamps [offset, offset+frames) to the shortest bound output
// channel. ok is false when nothing is left to render.
func (b *Base) Span(frames, offset int) (start, end int, ok bool) {
	if frames <= 0 || offset < 0 || len(b.out) == 0 {
		return 0, 0, false
	}
	limit := len(b.out[0])
	for _, ch := range b.out[1:] {
		if len(ch) < limit {
			limit = len(ch)
		}
	}
	start = offset
	end = offset + frames
	if end > limit {
		end = limit
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// Input returns input channel ch, falling back to the last bound input
// so a mono source can feed a stereo kernel. It returns nil without input.
func (b *Base) Input(ch int) []float64 {
	if len(b.in) == 0 {
		return nil
	}
	if ch >= len(b.in) {
		ch = len(b.in) - 1
	}
	return b.in[ch]
}

// PassThrough copies input to output over the range, or writes silence
// where no input sample exists.
func (b *Base) PassThrough(frames, offset int) {
	start, end, ok := b.Span(frames, offset)
	if !ok {
		return
	}
	for ch, dst := range b.out {
		src := b.Input(ch)
		n := 0
		if len(src) > start {
			n = copy(dst[start:end], src[start:min(end, len(src))])
		}
		core.Zero(dst[start+n : end])
	}
}
