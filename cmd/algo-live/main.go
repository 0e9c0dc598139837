// Command algo-live runs a chorus or flanger on the default audio device.
//
// Usage:
//
//	algo-live [flags]
//
// With -nats the effect listens for JSON control messages on
// <prefix>.param, <prefix>.midi and <prefix>.transport. MIDI control
// changes are mapped to parameters: CC 1 depth, CC 76 rate, CC 91 mix.
//
// Examples:
//
//	algo-live -input -depth 0.4 -mix 0.5
//	algo-live -effect flanger -freq 0.2 -depth 1 -input
//	algo-live -input -nats nats://localhost:4222 -prefix studio.fx
//	algo-live -devices
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/effects/modulation"
	"github.com/cwbudde/algo-render/dsp/interp"
	"github.com/cwbudde/algo-render/dsp/render"
	"github.com/cwbudde/algo-render/internal/control"
	"github.com/cwbudde/algo-render/internal/host"
)

func main() {
	effect := flag.String("effect", "chorus", "effect name (chorus, flanger)")
	freq := flag.Float64("freq", 1, "modulation frequency in Hz")
	depth := flag.Float64("depth", 0, "modulation depth 0..1")
	mix := flag.Float64("mix", 0.5, "dry/wet mix 0..1")
	interpName := flag.String("interp", "linear", "delay interpolation (linear, hermite, lagrange3)")
	sampleRate := flag.Float64("rate", 48000, "sample rate in Hz")
	channels := flag.Int("channels", 2, "channel count (1 or 2)")
	block := flag.Int("block", 256, "render quantum in frames")
	buffer := flag.Int("buffer", 0, "device buffer in frames (0 lets the device choose)")
	input := flag.Bool("input", false, "process the default input device instead of silence")
	natsURL := flag.String("nats", "", "NATS server URL for remote control")
	prefix := flag.String("prefix", control.DefaultPrefix, "NATS subject prefix")
	midiChannel := flag.Int("midi-channel", -1, "MIDI channel for CC mapping (0-15, -1 for all)")
	devices := flag.Bool("devices", false, "print the default devices and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: algo-live [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a chorus or flanger on the default audio device.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, options{
		effect:      *effect,
		freq:        *freq,
		depth:       *depth,
		mix:         *mix,
		interp:      *interpName,
		sampleRate:  *sampleRate,
		channels:    *channels,
		block:       *block,
		buffer:      *buffer,
		input:       *input,
		natsURL:     *natsURL,
		prefix:      *prefix,
		midiChannel: *midiChannel,
		devices:     *devices,
	}); err != nil {
		logger.Error("algo-live failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	effect      string
	freq        float64
	depth       float64
	mix         float64
	interp      string
	sampleRate  float64
	channels    int
	block       int
	buffer      int
	input       bool
	natsURL     string
	prefix      string
	midiChannel int
	devices     bool
}

func run(logger *slog.Logger, opts options) error {
	backend := host.NewPortAudioBackend()

	if opts.devices {
		if err := backend.Initialize(); err != nil {
			return err
		}
		defer backend.Terminate()

		summary, err := backend.DeviceSummary()
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	}

	typ, ok := modulation.ParseType(opts.effect)
	if !ok {
		return fmt.Errorf("unknown effect %q", opts.effect)
	}
	mode, ok := interp.ParseMode(opts.interp)
	if !ok {
		return fmt.Errorf("unknown interpolation %q", opts.interp)
	}
	if opts.channels != 1 && opts.channels != 2 {
		return fmt.Errorf("channels must be 1 or 2: %d", opts.channels)
	}

	fx, err := modulation.New(typ,
		modulation.WithModFrequency(opts.freq),
		modulation.WithDepth(opts.depth),
		modulation.WithMix(opts.mix),
		modulation.WithInterpolation(mode),
		modulation.WithMaxFrames(opts.block),
	)
	if err != nil {
		return err
	}

	ccMap, err := control.NewCCMapper(fx, control.DefaultCCMappings()...)
	if err != nil {
		return err
	}
	ccMap.ListenOn(opts.midiChannel)

	renderer, err := render.NewRenderer(fx, render.WithMIDIHandler(ccMap))
	if err != nil {
		return err
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(opts.sampleRate),
		core.WithChannels(opts.channels),
		core.WithBlockSize(opts.block),
	)
	h, err := host.New(backend, renderer, cfg,
		host.WithLogger(logger),
		host.WithInput(opts.input),
		host.WithFramesPerBuffer(opts.buffer),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.natsURL != "" {
		conn, err := control.Connect(ctx, opts.natsURL, "algo-live", logger)
		if err != nil {
			return err
		}

		ctl, err := control.New(conn, renderer, cfg.SampleRate,
			control.WithPrefix(opts.prefix),
			control.WithParams(fx.Params()),
			control.WithTransport(fx),
			control.WithLookahead(opts.block),
			control.WithLogger(logger),
		)
		if err != nil {
			conn.Close()
			return err
		}
		if err := ctl.Start(); err != nil {
			ctl.Close()
			return err
		}
		go ctl.Run(ctx, pumpInterval(opts.block, cfg.SampleRate))
		defer func() {
			ctl.Close()
			s := ctl.Stats()
			logger.Info("control closed",
				"received", s.Received,
				"posted", s.Posted,
				"dropped", s.Dropped,
				"rejected", s.Rejected,
			)
		}()
	}

	logger.Info("running", "effect", typ, "sampleRate", cfg.SampleRate, "channels", cfg.Channels)
	return h.Run(ctx)
}

// pumpInterval is half a render quantum, at least one millisecond.
func pumpInterval(block int, sampleRate float64) time.Duration {
	d := time.Duration(float64(block) / sampleRate / 2 * float64(time.Second))
	return max(d, time.Millisecond)
}
