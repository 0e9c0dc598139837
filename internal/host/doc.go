// Package host drives a render.Renderer from a live audio device.
//
// A Backend opens a callback stream with non-interleaved float32 buffers.
// Host converts each callback into float64 quanta of at most the
// configured block size and renders them in place, so the device's
// buffer size may differ from the render quantum. PortAudioBackend talks
// to real hardware; MockBackend drives the same callback from tests.
package host
