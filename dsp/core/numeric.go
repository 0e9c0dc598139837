package core

import "math"

// Clamp limits value to the inclusive range [lo, hi]. Swapped bounds are
// reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// MsToSamples converts milliseconds to fractional samples.
func MsToSamples(ms, sampleRate float64) float64 {
	return ms * sampleRate * 0.001
}

// SamplesToMs converts fractional samples to milliseconds. A non-positive
// rate gives 0.
func SamplesToMs(samples, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return 1000 * samples / sampleRate
}

// SecondsToFrames rounds a duration to the nearest whole frame. Negative
// or non-finite durations give -1.
func SecondsToFrames(seconds, sampleRate float64) int64 {
	if seconds < 0 || !IsFinite(seconds) || !IsFinite(sampleRate) {
		return -1
	}
	return int64(math.Round(seconds * sampleRate))
}
