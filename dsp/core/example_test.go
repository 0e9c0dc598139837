package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-render/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithBlockSize(256),
		core.WithChannels(1),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d channels=%d valid=%v\n",
		cfg.SampleRate, cfg.BlockSize, cfg.Channels, cfg.Validate() == nil)

	// Output:
	// sampleRate=48000 blockSize=256 channels=1 valid=true
}

func ExampleMsToSamples() {
	// The centre of the chorus range at 44.1 kHz.
	fmt.Printf("%.1f samples\n", core.MsToSamples(13, 44100))
	fmt.Println(core.SecondsToFrames(0.25, 48000), "frames")

	// Output:
	// 573.3 samples
	// 12000 frames
}

func ExamplePlanar() {
	buf := core.Planar(2, 4)
	buf[1][3] = 1
	buf[1] = core.EnsureLen(buf[1], 2)
	core.Zero(buf[0])

	fmt.Println(len(buf), len(buf[0]), len(buf[1]), cap(buf[1]))

	// Output:
	// 2 4 2 4
}
