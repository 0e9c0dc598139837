package modulation_test

import (
	"fmt"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/effects/modulation"
)

func ExampleNewChorus() {
	chorus, err := modulation.NewChorus(
		modulation.WithModFrequency(0.8),
		modulation.WithDepth(0.4),
		modulation.WithMix(0.5),
	)
	if err != nil {
		fmt.Println("error")
		return
	}
	if err := chorus.Init(2, 48000); err != nil {
		fmt.Println("error")
		return
	}
	chorus.Start()

	in := core.Planar(2, 256)
	in[0][0], in[1][0] = 1, 1
	out := core.Planar(2, 256)

	chorus.SetBuffers(in, out)
	chorus.Process(256, 0)

	lo, hi := chorus.DelayRangeMs()
	fmt.Printf("range=%g..%gms first=%.2f\n", lo, hi, out[0][0])
	// Output:
	// range=1..25ms first=0.50
}
