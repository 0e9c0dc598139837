package offline

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-render/dsp/core"
)

// ErrInvalidBitDepth is returned by WriteWAV for depths other than 16, 24 or 32.
var ErrInvalidBitDepth = errors.New("offline: unsupported bit depth")

const wavFormatPCM = 1

// WriteWAV encodes a as integer PCM at bitDepth. Samples are clipped to
// [-1, 1].
func WriteWAV(w io.WriteSeeker, a *Audio, bitDepth int) error {
	if err := a.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	channels := a.NumChannels()
	frames := a.Frames()
	full := float64(int64(1)<<(bitDepth-1)) - 1

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: bitDepth,
	}
	for i := range frames {
		for ch := range channels {
			v := core.Clamp(a.Channels[ch][i], -1, 1)
			buf.Data[i*channels+ch] = int(math.Round(v * full))
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// WriteWAVFile creates path and writes a to it.
func WriteWAVFile(path string, a *Audio, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteWAV(f, a, bitDepth); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
