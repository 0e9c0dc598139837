// Package delay provides circular delay lines.
//
// [Line] is the fixed-size storage engine with integer and interpolated
// reads. [Fractional] builds on it with a millisecond API, a delay time
// that can be updated from another goroutine, and a write-then-read Push
// suitable for per-sample modulated effects.
package delay
