// Package conv provides cross-correlation for signal alignment.
//
// [CorrelateDirect] is the O(N*M) reference. [CorrelateFFT] and the
// reusable [Correlator] compute the same result through algo-fft, the
// latter without allocating per call so it can run on every analysis
// window:
//
//	c, err := conv.NewCorrelator(len(output), len(input))
//	corr, err := c.Correlate(output, input)
//	idx, _ := conv.FindPeak(corr)
//	lag := float64(conv.LagFromIndex(idx, len(input))) + conv.RefinePeak(corr, idx)
//
// A positive lag means the first signal is the second delayed by that
// many samples.
package conv
