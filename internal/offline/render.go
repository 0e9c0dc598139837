package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/kernel"
	"github.com/cwbudde/algo-render/dsp/render"
)

// ErrTooManyChannels is returned for inputs wider than kernel.MaxChannels.
var ErrTooManyChannels = errors.New("offline: too many channels")

const defaultQueueCapacity = 256

// Options configures Render.
type Options struct {
	// BlockSize is the render quantum in frames. Default 512.
	BlockSize int
	// TailFrames of silence are appended so delays can ring out.
	TailFrames int
	// Logger receives progress; nil discards.
	Logger *slog.Logger
}

// Stats summarizes a render.
type Stats struct {
	Frames   int
	Blocks   int
	Events   int
	Deferred int
	// Skipped counts events never posted because they are stamped at or
	// after the end of the output.
	Skipped int
	PeakIn  float64
	PeakOut float64
}

// Render initializes k for in's format, processes in block by block and
// returns the output. Events must be sorted by time; they are posted to
// the renderer queue before the block that contains them.
func Render(ctx context.Context, k kernel.Kernel, in *Audio, events []render.Event, opts Options) (*Audio, Stats, error) {
	var stats Stats

	if err := in.Validate(); err != nil {
		return nil, stats, err
	}
	channels := in.NumChannels()
	if channels > kernel.MaxChannels {
		return nil, stats, fmt.Errorf("%w: %d", ErrTooManyChannels, channels)
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(in.SampleRate)),
		core.WithChannels(channels),
		core.WithBlockSize(opts.BlockSize),
	)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := k.Init(cfg.Channels, cfg.SampleRate); err != nil {
		return nil, stats, fmt.Errorf("init kernel: %w", err)
	}
	k.Start()
	defer k.Stop()

	r, err := render.NewRenderer(k,
		render.WithQueueCapacity(max(defaultQueueCapacity, len(events))),
		render.WithBatchSize(max(defaultQueueCapacity, len(events))),
	)
	if err != nil {
		return nil, stats, err
	}

	total := in.Frames() + max(opts.TailFrames, 0)
	out := NewAudio(in.SampleRate, channels, total)

	src := core.Planar(channels, cfg.BlockSize)
	inView := make([][]float64, channels)
	outView := make([][]float64, channels)

	next := 0
	for start := 0; start < total; start += cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		n := min(cfg.BlockSize, total-start)
		end := int64(start + n)

		for next < len(events) && events[next].Time < end {
			if err := r.Post(events[next]); err != nil {
				stats.Deferred++
				break
			}
			next++
			stats.Events++
		}

		for ch := range channels {
			copied := 0
			if start < in.Frames() {
				copied = copy(src[ch][:n], in.Channels[ch][start:])
			}
			core.Zero(src[ch][copied:n])
			inView[ch] = src[ch][:n]
			outView[ch] = out.Channels[ch][start : start+n]
		}

		r.Render(inView, outView)
		stats.Blocks++
	}

	if next < len(events) {
		stats.Skipped = len(events) - next
		logger.Warn("events past the end of the output were not applied",
			"skipped", stats.Skipped,
			"firstTime", events[next].Time,
			"frames", total,
		)
	}

	for ch := range channels {
		stats.PeakIn = max(stats.PeakIn, vecmath.MaxAbs(in.Channels[ch]))
		stats.PeakOut = max(stats.PeakOut, vecmath.MaxAbs(out.Channels[ch]))
	}
	stats.Frames = total

	logger.Debug("offline render done",
		"frames", stats.Frames,
		"blocks", stats.Blocks,
		"events", stats.Events,
		"skipped", stats.Skipped,
		"peakIn", stats.PeakIn,
		"peakOut", stats.PeakOut,
	)

	return out, stats, nil
}
