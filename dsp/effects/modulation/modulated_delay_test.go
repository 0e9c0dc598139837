package modulation

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/interp"
	"github.com/cwbudde/algo-render/dsp/kernel"
	"github.com/cwbudde/algo-render/dsp/render"
	"github.com/cwbudde/algo-render/internal/testutil"
	"github.com/cwbudde/algo-render/measure/lagtrack"
)

func newStarted(t testing.TB, effectType Type, channels int, sampleRate float64, opts ...Option) *ModulatedDelay {
	t.Helper()

	m, err := New(effectType, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.Init(channels, sampleRate); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	m.Start()
	return m
}

// run processes in through m in one call and returns the planar output.
func run(m *ModulatedDelay, in [][]float64) [][]float64 {
	out := core.Planar(len(in), len(in[0]))
	m.SetBuffers(in, out)
	m.Process(len(in[0]), 0)
	return out
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  Type
		opts []Option
	}{
		{"unknown type", Type(7), nil},
		{"frequency low", Chorus, []Option{WithModFrequency(0.05)}},
		{"frequency high", Chorus, []Option{WithModFrequency(11)}},
		{"depth", Flanger, []Option{WithDepth(1.5)}},
		{"mix nan", Chorus, []Option{WithMix(math.NaN())}},
		{"max frames", Chorus, []Option{WithMaxFrames(0)}},
		{"interpolation", Chorus, []Option{WithInterpolation(interp.Mode(9))}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tc.typ, tc.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := New(Type(7)); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("unknown type error = %v, want ErrInvalidType", err)
	}
}

func TestTypeNames(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{Chorus, Flanger} {
		got, ok := ParseType(typ.String())
		if !ok || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	if _, ok := ParseType("phaser"); ok {
		t.Fatal("ParseType accepted unknown name")
	}
	if Type(5).String() != "Type(5)" {
		t.Fatalf("Type(5).String() = %q", Type(5).String())
	}
}

func TestParameters(t *testing.T) {
	t.Parallel()

	m, err := NewChorus()
	if err != nil {
		t.Fatal(err)
	}

	if got := m.Parameter(ParamModFrequency); got != 1 {
		t.Fatalf("default frequency = %g", got)
	}
	if got := m.Parameter(ParamModDepth); got != 0 {
		t.Fatalf("default depth = %g", got)
	}
	if got := m.Parameter(ParamDryWetMix); got != 0.5 {
		t.Fatalf("default mix = %g", got)
	}

	m.SetParameter(ParamModFrequency, 50)
	if got := m.Parameter(ParamModFrequency); got != 10 {
		t.Fatalf("frequency not clamped: %g", got)
	}
	m.SetParameter(ParamModDepth, -1)
	if got := m.Parameter(ParamModDepth); got != 0 {
		t.Fatalf("depth not clamped: %g", got)
	}
	m.SetParameter(ParamDryWetMix, math.NaN())
	if got := m.Parameter(ParamDryWetMix); got != 0.5 {
		t.Fatalf("NaN changed mix: %g", got)
	}

	m.SetParameter(99, 1)
	if got := m.Parameter(99); got != 0 {
		t.Fatalf("unknown address = %g", got)
	}

	if addr, ok := m.Params().Lookup("dryWetMix"); !ok || addr != ParamDryWetMix {
		t.Fatalf("Lookup(dryWetMix) = %d, %v", addr, ok)
	}

	f, err := NewFlanger(WithModFrequency(2), WithDepth(0.3), WithMix(0.8))
	if err != nil {
		t.Fatal(err)
	}
	if f.Parameter(ParamModFrequency) != 2 || f.Parameter(ParamModDepth) != 0.3 || f.Parameter(ParamDryWetMix) != 0.8 {
		t.Fatal("options not applied to parameters")
	}
}

func TestDelayRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ          Type
		lo, hi       float64
		atMin, atMax float64
	}{
		{Chorus, 1, 25, 1, 25},
		{Flanger, 0.1, 7, 0.1, 7},
	}

	for _, tc := range tests {
		m, err := New(tc.typ)
		if err != nil {
			t.Fatal(err)
		}
		lo, hi := m.DelayRangeMs()
		if lo != tc.lo || hi != tc.hi {
			t.Fatalf("%v range = [%g, %g]", tc.typ, lo, hi)
		}
		if got := m.delayMs(-1, 1); math.Abs(got-tc.atMin) > 1e-12 {
			t.Fatalf("%v delay at m=-1 = %g, want %g", tc.typ, got, tc.atMin)
		}
		if got := m.delayMs(1, 1); math.Abs(got-tc.atMax) > 1e-12 {
			t.Fatalf("%v delay at m=1 = %g, want %g", tc.typ, got, tc.atMax)
		}
	}

	c, _ := NewChorus()
	if got := c.delayMs(0.7, 0); got != 13 {
		t.Fatalf("chorus depth-zero delay = %g, want 13", got)
	}
	f, _ := NewFlanger()
	if got := f.delayMs(0.7, 0); got != 0.1 {
		t.Fatalf("flanger depth-zero delay = %g, want 0.1", got)
	}
}

func TestInitErrors(t *testing.T) {
	t.Parallel()

	m, err := NewChorus()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Init(3, 48000); !errors.Is(err, kernel.ErrInvalidChannelCount) {
		t.Fatalf("Init(3) = %v", err)
	}
	if err := m.Init(2, 0); !errors.Is(err, kernel.ErrInvalidSampleRate) {
		t.Fatalf("Init(sr=0) = %v", err)
	}
	if m.IsSetUp() {
		t.Fatal("failed Init left kernel set up")
	}
}

func TestBypassIdentity(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{Chorus, Flanger} {
		m := newStarted(t, typ, 2, 48000, WithDepth(1), WithMix(0))
		in := [][]float64{
			testutil.Noise(1, 1, 3000),
			testutil.Noise(2, 1, 3000),
		}
		out := run(m, in)
		for ch := range in {
			for i := range in[ch] {
				if out[ch][i] != in[ch][i] {
					t.Fatalf("%v ch%d[%d] = %g, want %g", typ, ch, i, out[ch][i], in[ch][i])
				}
			}
		}
	}
}

func TestDepthZeroIsFixedDelay(t *testing.T) {
	t.Parallel()

	const sr = 44100
	m := newStarted(t, Chorus, 1, sr, WithDepth(0), WithMix(1))

	out := run(m, [][]float64{testutil.Impulse(2000, 0)})[0]

	// 13 ms at 44.1 kHz is 573.3 samples.
	want := map[int]float64{573: 0.7, 574: 0.3}
	for i, v := range out {
		if math.Abs(v-want[i]) > 1e-9 {
			t.Fatalf("out[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestFlangerDepthZeroStable(t *testing.T) {
	t.Parallel()

	m := newStarted(t, Flanger, 2, 48000, WithDepth(0), WithMix(0.5))
	in := [][]float64{testutil.Constant(1, 4096), testutil.Constant(1, 4096)}
	out := run(m, in)

	for ch := range out {
		testutil.RequireFinite(t, out[ch])
		// Once the 0.1 ms line has filled, dry and wet are both 1.
		for i := 10; i < len(out[ch]); i++ {
			if math.Abs(out[ch][i]-1) > 1e-12 {
				t.Fatalf("ch%d[%d] = %g, want 1", ch, i, out[ch][i])
			}
		}
	}
}

func TestChorusScenario(t *testing.T) {
	t.Parallel()

	const (
		sr     = 44100.0
		frames = 44100
	)

	m := newStarted(t, Chorus, 2, sr, WithModFrequency(1), WithDepth(1), WithMix(1))

	sine := testutil.Sine(1, sr, 1, frames)
	out := run(m, [][]float64{sine, append([]float64(nil), sine...)})

	for ch, lead := range []float64{0, 0.25} {
		testutil.RequireFinite(t, out[ch])
		for n := 1200; n < frames; n++ {
			mod := math.Sin(2 * math.Pi * (float64(n)/sr + lead))
			delayMs := 13 + 12*mod
			want := math.Sin(2 * math.Pi * (float64(n) - delayMs*sr/1000) / sr)
			if diff := math.Abs(out[ch][n] - want); diff > 1e-6 {
				t.Fatalf("ch%d[%d] = %.9f, want %.9f (delay %.3f ms)", ch, n, out[ch][n], want, delayMs)
			}
		}
	}
}

func TestChorusSweepTracked(t *testing.T) {
	t.Parallel()

	const sr = 44100.0

	m := newStarted(t, Chorus, 1, sr, WithModFrequency(1), WithDepth(0.05), WithMix(1))

	noise := testutil.Noise(11, 1, int(sr))
	out := run(m, [][]float64{noise})[0]

	est, err := lagtrack.Track(noise, out, lagtrack.Config{
		SampleRate: sr,
		WindowSize: 2048,
		HopSize:    1024,
		MaxLag:     1200,
	})
	if err != nil {
		t.Fatal(err)
	}

	var tracked []lagtrack.Estimate
	for _, e := range est {
		if e.Start < 1200 {
			continue
		}
		tracked = append(tracked, e)
		want := 13 + 12*0.05*math.Sin(2*math.Pi*e.Center)
		if math.Abs(e.LagMs-want) > 0.2 {
			t.Fatalf("window at %.3fs: lag %.3f ms, want %.3f ms", e.Center, e.LagMs, want)
		}
	}

	s := lagtrack.Summarize(tracked)
	if s.MinMs < 12.2 || s.MaxMs > 13.8 || s.MaxMs-s.MinMs < 0.9 {
		t.Fatalf("sweep summary = %+v", s)
	}
}

func TestMonoRunsLeftPathOnly(t *testing.T) {
	t.Parallel()

	m := newStarted(t, Chorus, 1, 48000, WithDepth(0.5), WithMix(0.5))
	in := testutil.Noise(4, 1, 2048)

	out := core.Planar(2, len(in))
	m.SetBuffers([][]float64{in}, out)
	m.Process(len(in), 0)

	if m.lines[1].DelaySamples() != 0 {
		t.Fatal("right delay line was driven in mono mode")
	}
	testutil.RequireNearlyEqual(t, out[1], out[0], 0)
}

func TestStoppedAndUninitializedPassThrough(t *testing.T) {
	t.Parallel()

	in := testutil.Noise(5, 1, 512)

	m := newStarted(t, Chorus, 1, 48000, WithDepth(1), WithMix(1))
	m.Stop()
	testutil.RequireNearlyEqual(t, run(m, [][]float64{in})[0], in, 0)

	u, err := NewFlanger(WithMix(1))
	if err != nil {
		t.Fatal(err)
	}
	u.Start()
	testutil.RequireNearlyEqual(t, run(u, [][]float64{in})[0], in, 0)

	m.Start()
	m.Deinit()
	if m.IsSetUp() {
		t.Fatal("Deinit left kernel set up")
	}
	testutil.RequireNearlyEqual(t, run(m, [][]float64{in})[0], in, 0)

	if err := m.Init(1, 48000); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	// Fully wet with at least 1 ms of delay: the first samples are silent.
	out := run(m, [][]float64{in})[0]
	testutil.RequireSilent(t, out[:40])
}

func TestResetRestoresState(t *testing.T) {
	t.Parallel()

	m := newStarted(t, Flanger, 2, 48000, WithDepth(0.7), WithMix(0.6))
	in := testutil.Noise(6, 1, 1500)

	first := run(m, [][]float64{in, in})
	m.Reset()
	second := run(m, [][]float64{in, in})

	for ch := range first {
		testutil.RequireNearlyEqual(t, second[ch], first[ch], 1e-12)
	}
}

func TestChunkedProcessingMatches(t *testing.T) {
	t.Parallel()

	in := testutil.Noise(8, 1, 5000)

	whole := newStarted(t, Chorus, 1, 44100, WithDepth(0.8), WithMix(0.7))
	chunked := newStarted(t, Chorus, 1, 44100, WithDepth(0.8), WithMix(0.7), WithMaxFrames(64))

	want := run(whole, [][]float64{in})[0]

	got := make([]float64, len(in))
	chunked.SetBuffers([][]float64{in}, [][]float64{got})
	for offset := 0; offset < len(in); offset += 333 {
		chunked.Process(min(333, len(in)-offset), offset)
	}

	testutil.RequireNearlyEqual(t, got, want, 1e-12)
}

func TestMixRamp(t *testing.T) {
	t.Parallel()

	m := newStarted(t, Chorus, 1, 44100, WithDepth(0), WithMix(0))
	m.StartRamp(ParamDryWetMix, 1, 100)

	out := run(m, [][]float64{testutil.Constant(1, 500)})[0]

	// The 13 ms line is still empty, so out = 1 - mix.
	for i, v := range out {
		mix := 1.0
		if i < 100 {
			mix = float64(i+1) / 100
		}
		if math.Abs(v-(1-mix)) > 1e-9 {
			t.Fatalf("out[%d] = %g, want %g", i, v, 1-mix)
		}
	}
	if m.Params().Ramping() {
		t.Fatal("ramp still running")
	}
}

func TestScheduledMixChange(t *testing.T) {
	t.Parallel()

	m := newStarted(t, Chorus, 1, 44100, WithDepth(0), WithMix(0))
	r, err := render.NewRenderer(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Post(render.ParameterEvent(100, ParamDryWetMix, 1)); err != nil {
		t.Fatal(err)
	}

	in := testutil.Constant(1, 256)
	out := make([]float64, 256)
	r.Render([][]float64{in}, [][]float64{out})

	for i, v := range out {
		want := 1.0
		if i >= 100 {
			want = 0
		}
		if v != want {
			t.Fatalf("out[%d] = %g, want %g", i, v, want)
		}
	}
}

func BenchmarkChorusProcess(b *testing.B) {
	m := newStarted(b, Chorus, 2, 48000, WithDepth(0.5), WithMix(0.5))
	in := [][]float64{testutil.Noise(1, 1, 512), testutil.Noise(2, 1, 512)}
	out := core.Planar(2, 512)
	m.SetBuffers(in, out)

	b.ReportAllocs()
	for b.Loop() {
		m.Process(512, 0)
	}
}

func TestReinitAndResetStopRamps(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		reset func(m *ModulatedDelay) error
	}{
		{"init", func(m *ModulatedDelay) error { return m.Init(1, 48000) }},
		{"reset", func(m *ModulatedDelay) error { m.Reset(); return nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newStarted(t, Chorus, 1, 48000, WithMix(0))
			m.StartRamp(ParamDryWetMix, 1, 48000)
			run(m, [][]float64{testutil.Constant(1, 100)})

			mix := m.Parameter(ParamDryWetMix)
			if math.Abs(mix-100.0/48000) > 1e-12 {
				t.Fatalf("mix after 100 frames = %g", mix)
			}

			if err := tc.reset(m); err != nil {
				t.Fatal(err)
			}
			if m.Params().Ramping() {
				t.Fatal("ramp still running")
			}

			run(m, [][]float64{testutil.Constant(1, 100)})
			if got := m.Parameter(ParamDryWetMix); got != mix {
				t.Fatalf("mix moved to %g, want %g", got, mix)
			}

			// A new ramp starts cleanly from the kept value.
			m.StartRamp(ParamDryWetMix, 1, 10)
			run(m, [][]float64{testutil.Constant(1, 10)})
			if got := m.Parameter(ParamDryWetMix); got != 1 {
				t.Fatalf("new ramp ended at %g", got)
			}
		})
	}
}
