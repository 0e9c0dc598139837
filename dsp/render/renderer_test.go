package render

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewRendererRejectsNilKernel(t *testing.T) {
	t.Parallel()

	if _, err := NewRenderer(nil); !errors.Is(err, ErrNilKernel) {
		t.Fatalf("err = %v, want ErrNilKernel", err)
	}
}

func TestRendererAdvancesClockAndAppliesQueuedEvents(t *testing.T) {
	t.Parallel()

	p := newProbe(t)
	r, err := NewRenderer(p, WithStartTime(1000))
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Post(ParameterEvent(1000+64+8, 0, 1)); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 64)
	if n := r.Render(nil, [][]float64{out}); n != 64 {
		t.Fatalf("Render = %d frames, want 64", n)
	}
	if r.SampleTime() != 1064 {
		t.Fatalf("SampleTime = %d, want 1064", r.SampleTime())
	}
	if r.Pending() != 1 {
		t.Fatalf("event for next quantum consumed early; pending = %d", r.Pending())
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("first quantum out[%d] = %g, want 0", i, v)
		}
	}

	r.Render(nil, [][]float64{out})
	for i, v := range out {
		want := 0.0
		if i >= 8 {
			want = 1
		}
		if v != want {
			t.Fatalf("second quantum out[%d] = %g, want %g", i, v, want)
		}
	}
}

func TestRendererSchedule(t *testing.T) {
	t.Parallel()

	rp := newRampProbe(t)
	r, err := NewRenderer(rp)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Schedule(0, 0.5, 16, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Schedule(0, 0.75, 32, 100); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 64)
	r.Render(nil, [][]float64{out})

	want := "render 16@0|ramp 0=0.5/0|render 16@16|ramp 0=0.75/100|render 32@32"
	if got := strings.Join(rp.log, "|"); got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}
}

func TestRendererBatchOverflowDefersEvents(t *testing.T) {
	t.Parallel()

	p := newProbe(t)
	r, err := NewRenderer(p, WithBatchSize(1))
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Post(ParameterEvent(2, 0, 1))
	_ = r.Post(ParameterEvent(4, 0, 2))

	out := make([]float64, 8)
	r.Render(nil, [][]float64{out})
	if p.value != 1 || r.Pending() != 1 {
		t.Fatalf("after first quantum value=%g pending=%d", p.value, r.Pending())
	}

	r.Render(nil, [][]float64{out})
	if p.value != 2 || out[0] != 2 {
		t.Fatalf("late event not applied at quantum start: value=%g out[0]=%g", p.value, out[0])
	}
}

func TestRendererSegmentObserver(t *testing.T) {
	t.Parallel()

	p := newProbe(t)
	var segments []int
	r, err := NewRenderer(p, WithSegmentObserver(func(frames, _ int) {
		segments = append(segments, frames)
	}))
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Post(ParameterEvent(10, 0, 1))

	r.Render(nil, [][]float64{make([]float64, 32), make([]float64, 24)})
	if len(segments) != 2 || segments[0] != 10 || segments[1] != 14 {
		t.Fatalf("segments = %v, want [10 14]", segments)
	}
}

func TestRendererConcurrentPost(t *testing.T) {
	t.Parallel()

	p := newProbe(t)
	r, err := NewRenderer(p, WithQueueCapacity(4096))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				_ = r.Post(ParameterEvent(0, 0, float64(g*100+i)))
			}
		}()
	}
	wg.Wait()

	if r.Pending() != 400 {
		t.Fatalf("Pending = %d, want 400", r.Pending())
	}
}
