// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:   2-point linear interpolation
//   - [Hermite4]:  4-point cubic Hermite
//   - [Lagrange4]: 4-point cubic Lagrange
//
// The [Mode] enum selects one of them at construction time for the
// delay lines in package delay.
package interp
