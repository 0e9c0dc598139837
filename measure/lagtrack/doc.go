// Package lagtrack measures how the delay between two signals changes
// over time.
//
// Each analysis window of the delayed signal is cross-correlated with
// the same window of the reference; the correlation peak, refined with a
// parabolic fit, gives the delay for that window. This is how a chorus
// or flanger sweep is verified against its nominal delay range.
package lagtrack
