package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     []float64
		wantDiff float64
		wantAt   int
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 0},
		{"middle", []float64{1, 2, 3}, []float64{1, 2.1, 3}, 0.1, 1},
		{"common prefix", []float64{1}, []float64{1.5, 9}, 0.5, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			diff, at := MaxAbsDiff(tc.a, tc.b)
			if math.Abs(diff-tc.wantDiff) > 1e-12 || at != tc.wantAt {
				t.Fatalf("MaxAbsDiff = (%v, %d), want (%v, %d)", diff, at, tc.wantDiff, tc.wantAt)
			}
		})
	}
}

func TestRequireHelpersPass(t *testing.T) {
	t.Parallel()

	RequireNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-10, 2}, 1e-9)
	RequireFinite(t, []float64{0, -1, math.MaxFloat64})
	RequireSilent(t, make([]float64, 4))
}
