package core

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by ProcessorConfig.Validate.
var ErrInvalidConfig = errors.New("core: invalid processor config")

// ProcessorConfig is the render format a host runs a kernel at.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig is 44.1 kHz stereo in 512-frame quanta.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		BlockSize:  512,
		Channels:   2,
	}
}

// WithSampleRate sets the sample rate. Non-positive rates are ignored.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the largest render quantum in frames.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the channel count. Only mono and stereo are accepted.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels == 1 || channels == 2 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies opts over the defaults; invalid values
// keep the default.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks a config built by hand.
func (c ProcessorConfig) Validate() error {
	switch {
	case c.SampleRate <= 0 || !IsFinite(c.SampleRate):
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidConfig, c.SampleRate)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size must be > 0: %d", ErrInvalidConfig, c.BlockSize)
	case c.Channels != 1 && c.Channels != 2:
		return fmt.Errorf("%w: channels must be 1 or 2: %d", ErrInvalidConfig, c.Channels)
	}
	return nil
}
