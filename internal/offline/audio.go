package offline

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-render/dsp/core"
)

var (
	// ErrEmptyAudio is returned for audio without channels or frames.
	ErrEmptyAudio = errors.New("offline: empty audio")
	// ErrInvalidAudio is returned for audio with a bad sample rate or
	// ragged channels.
	ErrInvalidAudio = errors.New("offline: invalid audio")
)

// Audio is planar float64 PCM in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   [][]float64
}

// NewAudio allocates silent audio.
func NewAudio(sampleRate, channels, frames int) *Audio {
	return &Audio{SampleRate: sampleRate, Channels: core.Planar(channels, frames)}
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int { return len(a.Channels) }

// Frames returns the length of the first channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// Validate checks the sample rate and that all channels have equal length.
func (a *Audio) Validate() error {
	if a == nil || len(a.Channels) == 0 {
		return ErrEmptyAudio
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidAudio, a.SampleRate)
	}
	n := len(a.Channels[0])
	for ch, data := range a.Channels[1:] {
		if len(data) != n {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidAudio, ch+1, len(data), n)
		}
	}
	return nil
}

// fromInterleaved builds Audio from interleaved samples scaled by 1/scale.
func fromInterleaved[T int | int16 | float32](sampleRate, channels int, data []T, scale float64) *Audio {
	frames := len(data) / channels
	a := NewAudio(sampleRate, channels, frames)
	for i := range frames {
		for ch := range channels {
			a.Channels[ch][i] = float64(data[i*channels+ch]) / scale
		}
	}
	return a
}
