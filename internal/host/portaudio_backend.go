package host

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend opens streams on the default PortAudio devices.
type PortAudioBackend struct {
	initialized bool
}

// NewPortAudioBackend returns an uninitialized backend.
func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

// Initialize initializes PortAudio once.
func (p *PortAudioBackend) Initialize() error {
	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	p.initialized = true
	return nil
}

// Terminate releases PortAudio.
func (p *PortAudioBackend) Terminate() error {
	if !p.initialized {
		return nil
	}
	p.initialized = false
	return portaudio.Terminate()
}

// OpenStream opens a low-latency stream on the default devices. The
// input device is only opened when cfg asks for input channels.
func (p *PortAudioBackend) OpenStream(cfg StreamConfig, cb Callback) (Stream, error) {
	if !p.initialized {
		return nil, ErrNotInitialized
	}

	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("default output device: %w", err)
	}

	var inDev *portaudio.DeviceInfo
	if cfg.InputChannels > 0 {
		inDev, err = portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
	}

	params := portaudio.LowLatencyParameters(inDev, outDev)
	params.Input.Channels = cfg.InputChannels
	params.Output.Channels = cfg.OutputChannels
	params.SampleRate = cfg.SampleRate
	params.FramesPerBuffer = cfg.FramesPerBuffer

	stream, err := portaudio.OpenStream(params, func(in, out [][]float32) {
		cb(in, out)
	})
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return stream, nil
}

// DeviceSummary lists the default devices for diagnostics.
func (p *PortAudioBackend) DeviceSummary() (string, error) {
	if !p.initialized {
		return "", ErrNotInitialized
	}

	out, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return "", err
	}
	summary := fmt.Sprintf("output: %s (%d ch, %.0f Hz)", out.Name, out.MaxOutputChannels, out.DefaultSampleRate)

	if in, err := portaudio.DefaultInputDevice(); err == nil {
		summary += fmt.Sprintf(", input: %s (%d ch)", in.Name, in.MaxInputChannels)
	}
	return summary, nil
}

var _ Backend = (*PortAudioBackend)(nil)
