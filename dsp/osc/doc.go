// Package osc provides a wave-table low-frequency oscillator for
// modulation. Each step yields a left/right pair offset in phase, which
// gives modulated stereo effects their width.
package osc
