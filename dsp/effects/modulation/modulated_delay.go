package modulation

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/delay"
	"github.com/cwbudde/algo-render/dsp/interp"
	"github.com/cwbudde/algo-render/dsp/kernel"
	"github.com/cwbudde/algo-render/dsp/osc"
)

// Type selects the delay range and LFO shape of a ModulatedDelay.
type Type int

const (
	// Chorus sweeps 1 to 25 ms with a sine LFO centred on the midpoint.
	Chorus Type = iota
	// Flanger sweeps 0.1 to 7 ms with a triangle LFO rising from the minimum.
	Flanger
)

// String returns the effect name used by the registry.
func (t Type) String() string {
	switch t {
	case Chorus:
		return "chorus"
	case Flanger:
		return "flanger"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType maps "chorus" or "flanger" to a Type.
func ParseType(name string) (Type, bool) {
	switch name {
	case "chorus":
		return Chorus, true
	case "flanger":
		return Flanger, true
	default:
		return 0, false
	}
}

// Parameter addresses.
const (
	ParamModFrequency kernel.Address = 0
	ParamModDepth     kernel.Address = 1
	ParamDryWetMix    kernel.Address = 2
)

const (
	chorusMinDelayMs  = 1.0
	chorusMaxDelayMs  = 25.0
	flangerMinDelayMs = 0.1
	flangerMaxDelayMs = 7.0

	minModFrequencyHz     = 0.1
	maxModFrequencyHz     = 10.0
	defaultModFrequencyHz = 1.0
	defaultModDepth       = 0.0
	defaultDryWetMix      = 0.5
	defaultMaxFrames      = 4096
)

// ErrInvalidType is returned by New for unknown effect types.
var ErrInvalidType = errors.New("modulation: invalid effect type")

// Option mutates ModulatedDelay construction parameters.
type Option func(*config) error

type config struct {
	modFrequency float64
	depth        float64
	mix          float64
	maxFrames    int
	mode         interp.Mode
}

func defaultConfig() config {
	return config{
		modFrequency: defaultModFrequencyHz,
		depth:        defaultModDepth,
		mix:          defaultDryWetMix,
		maxFrames:    defaultMaxFrames,
		mode:         interp.Linear,
	}
}

// WithModFrequency sets the initial LFO rate in Hz, in [0.1, 10].
func WithModFrequency(hz float64) Option {
	return func(cfg *config) error {
		if hz < minModFrequencyHz || hz > maxModFrequencyHz || math.IsNaN(hz) {
			return fmt.Errorf("modulation frequency must be in [%g, %g]: %f",
				minModFrequencyHz, maxModFrequencyHz, hz)
		}
		cfg.modFrequency = hz
		return nil
	}
}

// WithDepth sets the initial modulation depth in [0, 1].
func WithDepth(depth float64) Option {
	return func(cfg *config) error {
		if depth < 0 || depth > 1 || math.IsNaN(depth) {
			return fmt.Errorf("modulation depth must be in [0, 1]: %f", depth)
		}
		cfg.depth = depth
		return nil
	}
}

// WithMix sets the initial wet amount in [0, 1].
func WithMix(mix float64) Option {
	return func(cfg *config) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("modulation mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithMaxFrames sizes the scratch buffers. Longer Process calls are
// split into chunks of this size.
func WithMaxFrames(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("modulation max frames must be > 0: %d", n)
		}
		cfg.maxFrames = n
		return nil
	}
}

// WithInterpolation selects the delay line read interpolation.
func WithInterpolation(mode interp.Mode) Option {
	return func(cfg *config) error {
		if !mode.Valid() {
			return fmt.Errorf("modulation interpolation mode invalid: %v", mode)
		}
		cfg.mode = mode
		return nil
	}
}

// ModulatedDelay is a stereo chorus or flanger kernel: one LFO drives a
// fractional delay line per channel, and the delayed signal is blended
// with the dry input.
type ModulatedDelay struct {
	kernel.Base

	effectType Type
	minDelayMs float64
	maxDelayMs float64
	midDelayMs float64
	rangeMs    float64

	params *kernel.ParamTable
	lfo    *osc.Oscillator
	lines  [kernel.MaxChannels]*delay.Fractional

	maxFrames int
	dry       [kernel.MaxChannels][]float64
	wet       [kernel.MaxChannels][]float64
	mixCurve  []float64
}

var (
	_ kernel.Kernel = (*ModulatedDelay)(nil)
	_ kernel.Ramper = (*ModulatedDelay)(nil)
)

// New creates an uninitialized chorus or flanger. Call Init before
// processing.
func New(effectType Type, opts ...Option) (*ModulatedDelay, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	m := &ModulatedDelay{effectType: effectType, maxFrames: cfg.maxFrames}

	waveform := osc.Sine
	switch effectType {
	case Chorus:
		m.minDelayMs, m.maxDelayMs = chorusMinDelayMs, chorusMaxDelayMs
	case Flanger:
		m.minDelayMs, m.maxDelayMs = flangerMinDelayMs, flangerMaxDelayMs
		waveform = osc.Triangle
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, int(effectType))
	}
	m.rangeMs = 0.5 * (m.maxDelayMs - m.minDelayMs)
	m.midDelayMs = 0.5 * (m.minDelayMs + m.maxDelayMs)

	params, err := kernel.NewParamTable(
		kernel.ParamSpec{
			Address: ParamModFrequency, Name: "modFrequency", Unit: "Hz",
			Min: minModFrequencyHz, Max: maxModFrequencyHz, Default: cfg.modFrequency,
		},
		kernel.ParamSpec{Address: ParamModDepth, Name: "modDepth", Min: 0, Max: 1, Default: cfg.depth},
		kernel.ParamSpec{Address: ParamDryWetMix, Name: "dryWetMix", Min: 0, Max: 1, Default: cfg.mix},
	)
	if err != nil {
		return nil, err
	}
	m.params = params

	m.lfo = osc.New(osc.WithWaveform(waveform))
	for ch := range m.lines {
		m.lines[ch] = delay.NewFractional(delay.WithMode(cfg.mode))
	}

	return m, nil
}

// NewChorus is New(Chorus, opts...).
func NewChorus(opts ...Option) (*ModulatedDelay, error) {
	return New(Chorus, opts...)
}

// NewFlanger is New(Flanger, opts...).
func NewFlanger(opts ...Option) (*ModulatedDelay, error) {
	return New(Flanger, opts...)
}

// Init sizes the delay lines for the effect's maximum delay, loads the
// LFO table and allocates scratch buffers. Calling it again resets all
// DSP state and stops running ramps; parameter values are kept.
func (m *ModulatedDelay) Init(channels int, sampleRate float64) error {
	if err := m.Base.Init(channels, sampleRate); err != nil {
		return err
	}
	m.params.CancelRamps()

	if err := m.lfo.Init(sampleRate, m.params.Get(ParamModFrequency)); err != nil {
		m.Base.Deinit()
		return err
	}
	for ch := range m.lines {
		if err := m.lines[ch].Init(sampleRate, m.maxDelayMs); err != nil {
			m.Base.Deinit()
			return err
		}
	}

	for ch := range m.dry {
		m.dry[ch] = core.EnsureLen(m.dry[ch], m.maxFrames)
		m.wet[ch] = core.EnsureLen(m.wet[ch], m.maxFrames)
	}
	m.mixCurve = core.EnsureLen(m.mixCurve, m.maxFrames)

	return nil
}

// Deinit releases the delay lines, LFO table and scratch buffers.
func (m *ModulatedDelay) Deinit() {
	m.Base.Deinit()
	m.lfo.Deinit()
	for ch := range m.lines {
		m.lines[ch].Deinit()
		m.dry[ch] = nil
		m.wet[ch] = nil
	}
	m.mixCurve = nil
}

// Reset clears delay history and LFO phase and stops running ramps.
// Parameter values are unchanged.
func (m *ModulatedDelay) Reset() {
	m.params.CancelRamps()
	m.lfo.Reset()
	for _, line := range m.lines {
		line.Reset()
	}
}

// Type returns the effect type.
func (m *ModulatedDelay) Type() Type { return m.effectType }

// DelayRangeMs returns the minimum and maximum delay swept by the effect.
func (m *ModulatedDelay) DelayRangeMs() (lo, hi float64) {
	return m.minDelayMs, m.maxDelayMs
}

// Params exposes the parameter table for hosts that enumerate parameters.
func (m *ModulatedDelay) Params() *kernel.ParamTable { return m.params }

// SetParameter stores a clamped parameter value; unknown addresses are ignored.
func (m *ModulatedDelay) SetParameter(addr kernel.Address, value float64) {
	m.params.Set(addr, value)
}

// Parameter returns the current value of addr, or 0 for unknown addresses.
func (m *ModulatedDelay) Parameter(addr kernel.Address) float64 {
	return m.params.Get(addr)
}

// StartRamp glides addr to target over frames frames. Render goroutine only.
func (m *ModulatedDelay) StartRamp(addr kernel.Address, target float64, frames int) {
	m.params.StartRamp(addr, target, frames)
}

// Process renders frames frames at offset. A kernel that is stopped or
// not set up passes input through unchanged.
func (m *ModulatedDelay) Process(frames, offset int) {
	if !m.Active() {
		m.PassThrough(frames, offset)
		return
	}

	start, end, ok := m.Span(frames, offset)
	if !ok {
		return
	}

	for start < end {
		n := min(end-start, m.maxFrames)
		m.processChunk(start, n)
		start += n
	}
}

func (m *ModulatedDelay) processChunk(start, n int) {
	_, out := m.Buffers()
	channels := min(len(out), m.Channels())

	for ch := range channels {
		dry := m.dry[ch][:n]
		src := m.Input(ch)
		copied := 0
		if len(src) > start {
			copied = copy(dry, src[start:])
		}
		core.Zero(dry[copied:])
	}

	m.lfo.SetFrequency(m.params.Get(ParamModFrequency))
	depth := m.params.Get(ParamModDepth)
	varying := m.params.Ramping()

	for i := range n {
		if varying {
			m.params.Tick()
			m.lfo.SetFrequency(m.params.Get(ParamModFrequency))
			depth = m.params.Get(ParamModDepth)
			m.mixCurve[i] = m.params.Get(ParamDryWetMix)
		}

		left, right := m.lfo.Samples()

		m.lines[0].SetDelayMs(m.delayMs(left, depth))
		m.wet[0][i] = m.lines[0].Push(m.dry[0][i])

		if channels > 1 {
			m.lines[1].SetDelayMs(m.delayMs(right, depth))
			m.wet[1][i] = m.lines[1].Push(m.dry[1][i])
		}
	}

	for ch := range channels {
		dst := out[ch][start : start+n]
		dry := m.dry[ch][:n]
		wet := m.wet[ch][:n]

		if varying {
			for i := range dst {
				mix := m.mixCurve[i]
				dst[i] = (1-mix)*dry[i] + mix*wet[i]
			}
			continue
		}

		mix := m.params.Get(ParamDryWetMix)
		vecmath.ScaleBlock(dst, dry, 1-mix)
		vecmath.ScaleBlockInPlace(wet, mix)
		vecmath.AddBlockInPlace(dst, wet)
	}

	for ch := channels; ch < len(out); ch++ {
		copy(out[ch][start:start+n], out[0][start:start+n])
	}
}

func (m *ModulatedDelay) delayMs(mod, depth float64) float64 {
	if m.effectType == Flanger {
		return m.minDelayMs + m.rangeMs*depth*(1+mod)
	}
	return m.midDelayMs + m.rangeMs*depth*mod
}
