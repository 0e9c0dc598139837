package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestPlanar(t *testing.T) {
	p := Planar(2, 3)
	if len(p) != 2 || len(p[0]) != 3 || len(p[1]) != 3 {
		t.Fatalf("unexpected shape: %d x %d", len(p), len(p[0]))
	}

	p[0] = append(p[0], 9)
	if p[1][0] != 0 {
		t.Fatal("append on channel 0 overwrote channel 1")
	}

	if Planar(0, 4) != nil {
		t.Fatal("expected nil for zero channels")
	}
}
