package conv

// FindPeak finds the index and value of the maximum in a correlation result.
func FindPeak(corr []float64) (index int, value float64) {
	if len(corr) == 0 {
		return -1, 0
	}

	index = 0
	value = corr[0]
	for i, v := range corr {
		if v > value {
			index = i
			value = v
		}
	}
	return index, value
}

// FindPeakInRange is FindPeak restricted to corr[lo:hi]. The returned
// index is relative to corr.
func FindPeakInRange(corr []float64, lo, hi int) (index int, value float64) {
	lo = max(lo, 0)
	hi = min(hi, len(corr))
	if lo >= hi {
		return -1, 0
	}
	idx, v := FindPeak(corr[lo:hi])
	return lo + idx, v
}

// RefinePeak fits a parabola through corr[index-1..index+1] and returns
// the fractional offset of its vertex, clamped to [-0.5, 0.5]. Edge
// indices and flat neighbourhoods return 0.
func RefinePeak(corr []float64, index int) float64 {
	if index <= 0 || index >= len(corr)-1 {
		return 0
	}
	ym1, y0, y1 := corr[index-1], corr[index], corr[index+1]
	denom := ym1 - 2*y0 + y1
	if denom == 0 {
		return 0
	}
	return max(-0.5, min(0.5, 0.5*(ym1-y1)/denom))
}

// LagFromIndex converts a correlation result index to a lag value.
// For a correlation of signals with lengths lenA and lenB,
// the lag at index i is i - (lenB - 1).
func LagFromIndex(index, lenB int) int {
	return index - (lenB - 1)
}

// IndexFromLag converts a lag value to a correlation result index.
func IndexFromLag(lag, lenB int) int {
	return lag + (lenB - 1)
}
