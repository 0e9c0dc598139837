// Package kernel defines the DSP kernel contract driven by the render
// scheduler, plus the pieces effects share: lifecycle flags and buffer
// binding ([Base]), an address-keyed parameter table with atomic values
// and render-thread ramps ([ParamTable]), and a name-to-factory
// [Registry] for hosts.
package kernel
