package testutil

import (
	"math"
	"testing"
)

// RequireNearlyEqual fails t at the first element pair that differs by
// more than eps, or on a length mismatch.
func RequireNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	if diff, at := MaxAbsDiff(got, want); diff > eps {
		t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", at, got[at], want[at], diff, eps)
	}
}

// RequireFinite fails t on the first NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireSilent fails t if any sample is not exactly zero.
func RequireSilent(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if v != 0 {
			t.Fatalf("index %d: got %v, want silence", i, v)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference over the common
// length of a and b and the index where it occurs.
func MaxAbsDiff(a, b []float64) (diff float64, at int) {
	n := min(len(a), len(b))
	for i := range n {
		if d := math.Abs(a[i] - b[i]); d > diff {
			diff, at = d, i
		}
	}
	return diff, at
}
