package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/render"
)

// ErrNilRenderer is returned by New without a renderer.
var ErrNilRenderer = errors.New("host: renderer is required")

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithInput opens the default input device and feeds it to the kernel.
// Without it the kernel sees silence.
func WithInput(enabled bool) Option {
	return func(h *Host) {
		h.duplex = enabled
	}
}

// WithFramesPerBuffer requests a device buffer size. Zero lets the
// device choose.
func WithFramesPerBuffer(frames int) Option {
	return func(h *Host) {
		if frames >= 0 {
			h.framesPerBuffer = frames
		}
	}
}

// Host adapts device callbacks to a renderer.
type Host struct {
	backend         Backend
	renderer        *render.Renderer
	cfg             core.ProcessorConfig
	duplex          bool
	framesPerBuffer int
	logger          *slog.Logger

	in, out         [][]float64
	inView, outView [][]float64

	callbacks atomic.Uint64
	frames    atomic.Uint64
}

// New prepares a host rendering cfg.Channels channels in quanta of at
// most cfg.BlockSize frames.
func New(backend Backend, r *render.Renderer, cfg core.ProcessorConfig, opts ...Option) (*Host, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if backend == nil {
		return nil, errors.New("host: backend is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Host{
		backend:  backend,
		renderer: r,
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		in:       core.Planar(cfg.Channels, cfg.BlockSize),
		out:      core.Planar(cfg.Channels, cfg.BlockSize),
		inView:   make([][]float64, cfg.Channels),
		outView:  make([][]float64, cfg.Channels),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// StreamConfig returns the stream the host asks the backend for.
func (h *Host) StreamConfig() StreamConfig {
	sc := StreamConfig{
		SampleRate:      h.cfg.SampleRate,
		OutputChannels:  h.cfg.Channels,
		FramesPerBuffer: h.framesPerBuffer,
	}
	if h.duplex {
		sc.InputChannels = h.cfg.Channels
	}
	return sc
}

// Callbacks returns how many device callbacks have been served.
func (h *Host) Callbacks() uint64 { return h.callbacks.Load() }

// Frames returns how many frames have been rendered.
func (h *Host) Frames() uint64 { return h.frames.Load() }

// Process renders one device buffer. Missing input channels are silent;
// output channels beyond the kernel's are left untouched.
func (h *Host) Process(in, out [][]float32) {
	frames := 0
	if len(out) > 0 {
		frames = len(out[0])
	}
	channels := min(h.cfg.Channels, len(out))

	for off := 0; off < frames; off += h.cfg.BlockSize {
		n := min(h.cfg.BlockSize, frames-off)

		for ch := range h.cfg.Channels {
			buf := h.in[ch][:n]
			if ch < len(in) && len(in[ch]) >= off+n {
				src := in[ch][off : off+n]
				for i, v := range src {
					buf[i] = float64(v)
				}
			} else {
				core.Zero(buf)
			}
			h.inView[ch] = buf
			h.outView[ch] = h.out[ch][:n]
		}

		h.renderer.Render(h.inView, h.outView)

		for ch := range channels {
			dst := out[ch][off : off+n]
			for i, v := range h.outView[ch] {
				dst[i] = float32(v)
			}
		}
	}

	h.callbacks.Add(1)
	h.frames.Add(uint64(frames))
}

// Run initializes the kernel and the backend, streams until ctx is done
// and tears everything down again.
func (h *Host) Run(ctx context.Context) error {
	k := h.renderer.Kernel()
	if err := k.Init(h.cfg.Channels, h.cfg.SampleRate); err != nil {
		return fmt.Errorf("init kernel: %w", err)
	}
	defer k.Deinit()

	if err := h.backend.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := h.backend.Terminate(); err != nil {
			h.logger.Warn("terminate audio backend", "error", err)
		}
	}()

	sc := h.StreamConfig()
	stream, err := h.backend.OpenStream(sc, h.Process)
	if err != nil {
		return err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			h.logger.Warn("close stream", "error", err)
		}
	}()

	k.Start()
	defer k.Stop()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	h.logger.Info("stream started",
		"sampleRate", sc.SampleRate,
		"channels", sc.OutputChannels,
		"input", sc.InputChannels > 0,
		"blockSize", h.cfg.BlockSize,
	)

	<-ctx.Done()

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	h.logger.Info("stream stopped", "callbacks", h.Callbacks(), "frames", h.Frames())
	return nil
}
