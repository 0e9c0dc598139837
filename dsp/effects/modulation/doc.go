// Package modulation provides modulated-delay effects as render kernels.
//
// [ModulatedDelay] runs one wave-table LFO into a fractional delay line
// per channel and blends the delayed signal with the input:
//
//   - Chorus: 1 to 25 ms sweep around the midpoint, sine LFO.
//   - Flanger: 0.1 to 7 ms sweep rising from the minimum, triangle LFO.
//
// The right channel LFO leads the left by a quarter cycle. Parameters are
// addressed by [ParamModFrequency], [ParamModDepth] and [ParamDryWetMix]
// and may be changed from any goroutine or ramped on the render
// goroutine through kernel.Ramper.
package modulation
