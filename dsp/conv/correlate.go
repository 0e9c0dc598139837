package conv

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
)

var (
	// ErrEmptyInput is returned when either operand has no samples.
	ErrEmptyInput = errors.New("conv: empty input")
	// ErrLengthMismatch is returned when a buffer does not match the
	// lengths a Correlator was planned for.
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
)

// fftSize is the smallest power of two holding n samples.
func fftSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// CorrelateDirect computes the full cross-correlation of a and b in the
// time domain. The result has length len(a) + len(b) - 1 and index k
// corresponds to lag k - (len(b) - 1): a positive lag means a is b
// delayed by that many samples.
func CorrelateDirect(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	m := len(b)
	out := make([]float64, len(a)+m-1)
	for k := range out {
		lag := k - (m - 1)
		var sum float64
		for j := max(0, -lag); j < m && j+lag < len(a); j++ {
			sum += a[j+lag] * b[j]
		}
		out[k] = sum
	}
	return out, nil
}

// CorrelateFFT computes the same result as CorrelateDirect through a
// single FFT of size fftSize(len(a)+len(b)-1).
func CorrelateFFT(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	c, err := NewCorrelator(len(a), len(b))
	if err != nil {
		return nil, err
	}
	res, err := c.Correlate(a, b)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), res...), nil
}

// CorrelateNormalized divides the cross-correlation by the product of
// the L2 norms of a and b, producing values in [-1, 1].
func CorrelateNormalized(a, b []float64) ([]float64, error) {
	result, err := CorrelateFFT(a, b)
	if err != nil {
		return nil, err
	}

	norm := l2Norm(a) * l2Norm(b)
	if norm == 0 {
		return result, nil
	}
	for i := range result {
		result[i] /= norm
	}
	return result, nil
}

// Correlator cross-correlates fixed-length signal pairs with a reusable
// FFT plan. Correlate does not allocate after construction.
type Correlator struct {
	lenA, lenB int
	size       int

	plan *algofft.Plan[complex128]

	timeA, timeB []complex128
	freqA, freqB []complex128
	result       []float64
}

// NewCorrelator prepares a correlator for inputs of lenA and lenB samples.
func NewCorrelator(lenA, lenB int) (*Correlator, error) {
	if lenA <= 0 || lenB <= 0 {
		return nil, ErrEmptyInput
	}

	size := fftSize(lenA + lenB - 1)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	return &Correlator{
		lenA:   lenA,
		lenB:   lenB,
		size:   size,
		plan:   plan,
		timeA:  make([]complex128, size),
		timeB:  make([]complex128, size),
		freqA:  make([]complex128, size),
		freqB:  make([]complex128, size),
		result: make([]float64, lenA+lenB-1),
	}, nil
}

// Lengths returns the input lengths the correlator was built for.
func (c *Correlator) Lengths() (lenA, lenB int) {
	return c.lenA, c.lenB
}

// Correlate returns the full cross-correlation of a and b, laid out as
// for CorrelateDirect. The returned slice is owned by c and overwritten
// by the next call.
func (c *Correlator) Correlate(a, b []float64) ([]float64, error) {
	if len(a) != c.lenA || len(b) != c.lenB {
		return nil, fmt.Errorf("%w: got %d/%d, want %d/%d",
			ErrLengthMismatch, len(a), len(b), c.lenA, c.lenB)
	}

	for i := range c.timeA {
		c.timeA[i] = 0
		c.timeB[i] = 0
	}
	for i, v := range a {
		c.timeA[i] = complex(v, 0)
	}
	for i, v := range b {
		c.timeB[i] = complex(v, 0)
	}

	if err := c.plan.Forward(c.freqA, c.timeA); err != nil {
		return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
	}
	if err := c.plan.Forward(c.freqB, c.timeB); err != nil {
		return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	// A * conj(B), reusing freqA as the product.
	for i, fb := range c.freqB {
		c.freqA[i] *= complex(real(fb), -imag(fb))
	}
	if err := c.plan.Inverse(c.timeA, c.freqA); err != nil {
		return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	// Circular result: non-negative lags at the front, negative lags
	// wrapped to the end.
	m := c.lenB
	for i := 0; i < c.lenA; i++ {
		c.result[m-1+i] = real(c.timeA[i])
	}
	for i := 0; i < m-1; i++ {
		c.result[i] = real(c.timeA[c.size-m+1+i])
	}

	return c.result, nil
}

func l2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}
