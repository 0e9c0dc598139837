package host

import "errors"

// ErrNotInitialized is returned when a stream is opened before Initialize.
var ErrNotInitialized = errors.New("host: backend not initialized")

// StreamConfig describes a duplex callback stream.
type StreamConfig struct {
	SampleRate      float64
	InputChannels   int
	OutputChannels  int
	FramesPerBuffer int
}

// Callback receives one device buffer per call, one slice per channel.
type Callback func(in, out [][]float32)

// Stream is an opened device stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Backend opens device streams.
type Backend interface {
	Initialize() error
	Terminate() error
	OpenStream(cfg StreamConfig, cb Callback) (Stream, error)
}
