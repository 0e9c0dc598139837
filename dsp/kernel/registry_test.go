package kernel

import (
	"errors"
	"testing"
)

type nopKernel struct {
	Base
}

func (k *nopKernel) Reset()                        {}
func (k *nopKernel) Process(frames, offset int)    { k.PassThrough(frames, offset) }
func (k *nopKernel) SetParameter(Address, float64) {}
func (k *nopKernel) Parameter(Address) float64     { return 0 }

func TestRegistryRegisterAndNew(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	factory := func() (Kernel, error) { return &nopKernel{}, nil }

	if err := r.Register("nop", factory); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("nop", factory); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := r.Register("", factory); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}

	k, err := r.New("nop")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := k.(*nopKernel); !ok {
		t.Fatalf("New returned %T", k)
	}

	if _, err := r.New("missing"); !errors.Is(err, ErrUnknownKernel) {
		t.Fatalf("New(missing) error = %v", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"flanger", "chorus", "gain"} {
		r.MustRegister(name, func() (Kernel, error) { return &nopKernel{}, nil })
	}

	names := r.Names()
	want := []string{"chorus", "flanger", "gain"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRegistry().MustRegister("", nil)
}
