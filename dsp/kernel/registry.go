package kernel

import (
	"errors"
	"fmt"
	"sort"
)

// Factory builds one uninitialized Kernel.
type Factory func() (Kernel, error)

// Registry maps effect names to their factories.
type Registry struct {
	factories map[string]Factory
}

var (
	errDuplicateKernel = errors.New("duplicate kernel name")
	// ErrUnknownKernel is returned by New for unregistered names.
	ErrUnknownKernel = errors.New("unknown kernel")
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("empty kernel name")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKernel, name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	err := r.Register(name, factory)
	if err != nil {
		panic("kernel registry: " + err.Error())
	}
}

// Lookup returns the factory for the given name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// New builds a kernel by name.
func (r *Registry) New(name string) (Kernel, error) {
	factory := r.Lookup(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}
	return factory()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
