package lagtrack

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-render/dsp/conv"
)

const defaultWindowSize = 2048

// ErrInvalidConfig is returned by NewTracker for unusable settings.
var ErrInvalidConfig = errors.New("lagtrack: invalid config")

// Config holds tracker parameters. Zero fields take defaults.
type Config struct {
	SampleRate float64
	// WindowSize is the analysis window length in samples. Default 2048.
	WindowSize int
	// HopSize is the distance between window starts. Default WindowSize/2.
	HopSize int
	// MinLag and MaxLag bound the peak search in samples. MaxLag defaults
	// to WindowSize/2.
	MinLag int
	MaxLag int
}

// Estimate is the delay found in one analysis window.
type Estimate struct {
	// Start is the first sample of the window.
	Start int
	// Center is the window midpoint in seconds.
	Center float64
	// Lag is the refined delay in samples.
	Lag float64
	// LagMs is Lag in milliseconds.
	LagMs float64
	// Score is the peak normalized by the window energies, in [-1, 1].
	Score float64
}

// Summary aggregates a track.
type Summary struct {
	Count  int
	MinMs  float64
	MaxMs  float64
	MeanMs float64
}

// Tracker estimates the time-varying delay between a reference signal
// and a delayed copy using windowed cross-correlation.
type Tracker struct {
	cfg  Config
	corr *conv.Correlator
}

func normalizeConfig(cfg Config) Config {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = cfg.WindowSize / 2
	}
	if cfg.MaxLag == 0 {
		cfg.MaxLag = cfg.WindowSize / 2
	}
	return cfg
}

// NewTracker validates cfg and prepares the correlation plan.
func NewTracker(cfg Config) (*Tracker, error) {
	cfg = normalizeConfig(cfg)

	switch {
	case cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0):
		return nil, fmt.Errorf("%w: sample rate %f", ErrInvalidConfig, cfg.SampleRate)
	case cfg.WindowSize < 2:
		return nil, fmt.Errorf("%w: window size %d", ErrInvalidConfig, cfg.WindowSize)
	case cfg.HopSize <= 0:
		return nil, fmt.Errorf("%w: hop size %d", ErrInvalidConfig, cfg.HopSize)
	case cfg.MinLag < 0 || cfg.MinLag > cfg.MaxLag || cfg.MaxLag >= cfg.WindowSize:
		return nil, fmt.Errorf("%w: lag range [%d, %d] for window %d",
			ErrInvalidConfig, cfg.MinLag, cfg.MaxLag, cfg.WindowSize)
	}

	corr, err := conv.NewCorrelator(cfg.WindowSize, cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	return &Tracker{cfg: cfg, corr: corr}, nil
}

// Config returns the normalized configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Track slides a window over both signals and returns one estimate per
// window with non-zero energy. Signals of different length are compared
// over the shorter one.
func (t *Tracker) Track(reference, delayed []float64) ([]Estimate, error) {
	n := min(len(reference), len(delayed))
	w := t.cfg.WindowSize
	if n < w {
		return nil, nil
	}

	lo := conv.IndexFromLag(t.cfg.MinLag, w)
	hi := conv.IndexFromLag(t.cfg.MaxLag, w) + 1

	estimates := make([]Estimate, 0, (n-w)/t.cfg.HopSize+1)
	for start := 0; start+w <= n; start += t.cfg.HopSize {
		ref := reference[start : start+w]
		del := delayed[start : start+w]

		energy := l2Norm(ref) * l2Norm(del)
		if energy == 0 {
			continue
		}

		corr, err := t.corr.Correlate(del, ref)
		if err != nil {
			return nil, err
		}

		idx, peak := conv.FindPeakInRange(corr, lo, hi)
		lag := float64(conv.LagFromIndex(idx, w)) + conv.RefinePeak(corr, idx)

		estimates = append(estimates, Estimate{
			Start:  start,
			Center: (float64(start) + 0.5*float64(w)) / t.cfg.SampleRate,
			Lag:    lag,
			LagMs:  1000 * lag / t.cfg.SampleRate,
			Score:  peak / energy,
		})
	}

	return estimates, nil
}

// Track is a one-shot helper around NewTracker and Tracker.Track.
func Track(reference, delayed []float64, cfg Config) ([]Estimate, error) {
	t, err := NewTracker(cfg)
	if err != nil {
		return nil, err
	}
	return t.Track(reference, delayed)
}

// Summarize returns the lag range and mean of estimates.
func Summarize(estimates []Estimate) Summary {
	if len(estimates) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(estimates),
		MinMs: math.Inf(1),
		MaxMs: math.Inf(-1),
	}
	var sum float64
	for _, e := range estimates {
		s.MinMs = math.Min(s.MinMs, e.LagMs)
		s.MaxMs = math.Max(s.MaxMs, e.LagMs)
		sum += e.LagMs
	}
	s.MeanMs = sum / float64(len(estimates))
	return s
}

func l2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}
