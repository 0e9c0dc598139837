package host

import (
	"errors"
	"sync"
)

// ErrNoStream is returned by MockBackend.Pump before a stream is running.
var ErrNoStream = errors.New("host: no running stream")

// MockBackend implements Backend without hardware. Tests drive the
// stream callback with Pump.
type MockBackend struct {
	mu          sync.Mutex
	initialized bool
	initErr     error
	openErr     error
	config      StreamConfig
	callback    Callback
	stream      *MockStream
}

// NewMockBackend returns a mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// SetInitError makes Initialize fail with err.
func (m *MockBackend) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

// SetOpenError makes OpenStream fail with err.
func (m *MockBackend) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// Initialize marks the backend ready.
func (m *MockBackend) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = true
	return nil
}

// Terminate marks the backend closed.
func (m *MockBackend) Terminate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
	return nil
}

// Initialized reports whether Initialize succeeded and Terminate was
// not called since.
func (m *MockBackend) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// OpenStream records cfg and cb.
func (m *MockBackend) OpenStream(cfg StreamConfig, cb Callback) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, ErrNotInitialized
	}
	if m.openErr != nil {
		return nil, m.openErr
	}

	m.config = cfg
	m.callback = cb
	m.stream = &MockStream{}
	return m.stream, nil
}

// Config returns the last opened stream configuration.
func (m *MockBackend) Config() StreamConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Stream returns the last opened stream, or nil.
func (m *MockBackend) Stream() *MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream
}

// Pump runs one callback of frames frames. in may be nil for silence;
// the rendered output is returned.
func (m *MockBackend) Pump(frames int, in [][]float32) ([][]float32, error) {
	m.mu.Lock()
	cb, stream, cfg := m.callback, m.stream, m.config
	m.mu.Unlock()

	if stream == nil || !stream.Running() {
		return nil, ErrNoStream
	}

	if in == nil {
		in = make([][]float32, cfg.InputChannels)
		for ch := range in {
			in[ch] = make([]float32, frames)
		}
	}
	out := make([][]float32, cfg.OutputChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}

	cb(in, out)
	return out, nil
}

// MockStream tracks Start, Stop and Close calls.
type MockStream struct {
	mu      sync.Mutex
	running bool
	closed  bool
}

// Start marks the stream running.
func (s *MockStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("host: stream closed")
	}
	s.running = true
	return nil
}

// Stop marks the stream stopped.
func (s *MockStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Close marks the stream closed.
func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.closed = true
	return nil
}

// Running reports whether the stream is started.
func (s *MockStream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Closed reports whether the stream is closed.
func (s *MockStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ Backend = (*MockBackend)(nil)
