package render

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-render/dsp/kernel"
)

const (
	defaultQueueCapacity = 1024
	defaultBatchSize     = 256
)

// ErrNilKernel is returned by NewRenderer without a kernel.
var ErrNilKernel = errors.New("render: nil kernel")

// Option configures a Renderer.
type Option func(*Renderer)

// WithQueueCapacity sets the control event queue size.
func WithQueueCapacity(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.queueCap = n
		}
	}
}

// WithBatchSize caps how many queued events one quantum consumes. Extra
// events stay queued and apply at the start of the next quantum.
func WithBatchSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithStartTime sets the initial sample time.
func WithStartTime(t int64) Option {
	return func(r *Renderer) {
		r.sampleTime.Store(t)
	}
}

// WithMIDIHandler routes MIDI events for kernels that do not handle MIDI.
func WithMIDIHandler(h kernel.MIDIHandler) Option {
	return func(r *Renderer) {
		r.sched.MIDI = h
	}
}

// WithSegmentObserver installs a Scheduler.OnSegment hook.
func WithSegmentObserver(fn func(frames, offset int)) Option {
	return func(r *Renderer) {
		r.sched.OnSegment = fn
	}
}

// Renderer drives a kernel from a host callback. It owns the sample
// clock and a queue through which control goroutines post timestamped
// events.
//
// Render must be called from one goroutine. Post, Schedule and
// SampleTime are safe from any goroutine.
type Renderer struct {
	kernel kernel.Kernel
	sched  Scheduler

	queueCap  int
	batchSize int
	queue     *Queue
	batch     []Event

	sampleTime atomic.Int64
	postMu     sync.Mutex
}

// NewRenderer wraps k. The kernel must be initialized separately.
func NewRenderer(k kernel.Kernel, opts ...Option) (*Renderer, error) {
	if k == nil {
		return nil, ErrNilKernel
	}

	r := &Renderer{
		kernel:    k,
		queueCap:  defaultQueueCapacity,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	r.queue = NewQueue(r.queueCap)
	r.batch = make([]Event, 0, r.batchSize)

	return r, nil
}

// Kernel returns the wrapped kernel.
func (r *Renderer) Kernel() kernel.Kernel {
	return r.kernel
}

// SampleTime returns the timestamp of the next frame Render will produce.
func (r *Renderer) SampleTime() int64 {
	return r.sampleTime.Load()
}

// Pending returns the number of queued events.
func (r *Renderer) Pending() int {
	return r.queue.Len()
}

// Post queues e for the quantum containing e.Time. Events must be posted
// in time order; an event older than the current quantum applies at its
// first frame.
func (r *Renderer) Post(e Event) error {
	r.postMu.Lock()
	defer r.postMu.Unlock()

	return r.queue.Push(e)
}

// Schedule posts a parameter change latency frames after the current
// sample time, ramped over rampFrames when rampFrames > 0.
func (r *Renderer) Schedule(addr kernel.Address, value float64, latency, rampFrames int) error {
	at := r.SampleTime() + int64(max(latency, 0))
	if rampFrames > 0 {
		return r.Post(RampEvent(at, addr, value, rampFrames))
	}
	return r.Post(ParameterEvent(at, addr, value))
}

// Render processes one quantum sized by the shortest output channel,
// consuming due events from the queue, and advances the clock. It
// returns the number of frames rendered.
func (r *Renderer) Render(in, out [][]float64) int {
	frames := quantumFrames(out)
	start := r.sampleTime.Load()

	r.batch = r.queue.DrainBefore(start+int64(frames), r.batch)
	r.RenderAt(start, frames, in, out, r.batch)
	r.sampleTime.Store(start + int64(frames))

	return frames
}

// RenderAt processes frames frames at start with a caller-supplied event
// list, for hosts that own the timeline. It does not touch the queue or
// the internal clock.
func (r *Renderer) RenderAt(start int64, frames int, in, out [][]float64, events []Event) {
	r.kernel.SetBuffers(in, out)
	r.sched.Process(start, frames, events, r.kernel)
}

func quantumFrames(out [][]float64) int {
	if len(out) == 0 {
		return 0
	}
	frames := len(out[0])
	for _, ch := range out[1:] {
		frames = min(frames, len(ch))
	}
	return frames
}
