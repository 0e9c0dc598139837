package render

import (
	"errors"
	"sync/atomic"
)

// ErrQueueFull is returned by Push when the ring has no free slot.
var ErrQueueFull = errors.New("render: event queue full")

// Queue is a bounded single-producer single-consumer ring of events.
//
// Push and Pop never block or allocate. One goroutine may push while
// another pops; multiple producers must serialize among themselves.
type Queue struct {
	buf  []Event
	mask uint64

	head atomic.Uint64 // next slot to pop
	tail atomic.Uint64 // next slot to push
}

// NewQueue returns a queue holding at least capacity events (rounded up
// to a power of two, minimum 2).
func NewQueue(capacity int) *Queue {
	size := 2
	for size < capacity {
		size <<= 1
	}
	return &Queue{buf: make([]Event, size), mask: uint64(size - 1)}
}

// Cap returns the number of slots.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Push appends e, or returns ErrQueueFull. Producer side only.
func (q *Queue) Push(e Event) error {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return ErrQueueFull
	}
	q.buf[tail&q.mask] = e
	q.tail.Store(tail + 1)
	return nil
}

// Peek returns the oldest event without removing it. Consumer side only.
func (q *Queue) Peek() (Event, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Event{}, false
	}
	return q.buf[head&q.mask], true
}

// Pop removes and returns the oldest event. Consumer side only.
func (q *Queue) Pop() (Event, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Event{}, false
	}
	e := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return e, true
}

// DrainBefore pops events stamped before end into dst[:0] and returns the
// filled slice. It stops at the first event at or after end, or when dst
// is full, so it never allocates. Consumer side only.
func (q *Queue) DrainBefore(end int64, dst []Event) []Event {
	dst = dst[:0]
	for len(dst) < cap(dst) {
		head := q.head.Load()
		if head == q.tail.Load() {
			break
		}
		e := &q.buf[head&q.mask]
		if e.Time >= end {
			break
		}
		dst = append(dst, *e)
		q.head.Store(head + 1)
	}
	return dst
}
