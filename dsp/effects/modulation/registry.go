package modulation

import "github.com/cwbudde/algo-render/dsp/kernel"

// Register adds "chorus" and "flanger" factories to r. opts apply to
// every kernel the factories build.
func Register(r *kernel.Registry, opts ...Option) error {
	for _, t := range []Type{Chorus, Flanger} {
		effectType := t
		err := r.Register(effectType.String(), func() (kernel.Kernel, error) {
			return New(effectType, opts...)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the chorus and flanger kernels.
func NewRegistry(opts ...Option) (*kernel.Registry, error) {
	r := kernel.NewRegistry()
	if err := Register(r, opts...); err != nil {
		return nil, err
	}
	return r, nil
}
