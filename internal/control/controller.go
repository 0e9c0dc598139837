package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/cwbudde/algo-render/dsp/render"
)

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "algo.render"

// ErrNoConnection is returned by New for a nil connection or sink.
var ErrNoConnection = errors.New("control: connection and sink are required")

// Sink receives stamped events. *render.Renderer satisfies it.
type Sink interface {
	SampleTime() int64
	Post(e render.Event) error
}

// Transport starts and stops processing. kernel.Kernel satisfies it.
type Transport interface {
	Start()
	Stop()
}

// Stats counts handled messages.
type Stats struct {
	Received uint64
	Posted   uint64
	Dropped  uint64
	Rejected uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithPrefix sets the subject prefix.
func WithPrefix(prefix string) Option {
	return func(c *Controller) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParams resolves parameter names in messages.
func WithParams(params Resolver) Option {
	return func(c *Controller) {
		c.params = params
	}
}

// WithLookahead releases held events this many frames before they are
// due. Set it to the render quantum so delayed events land on their exact
// frame. The default of 0 releases an event once the clock reaches it.
func WithLookahead(frames int) Option {
	return func(c *Controller) {
		if frames > 0 {
			c.lookahead = int64(frames)
		}
	}
}

// WithTransport enables the transport subject.
func WithTransport(t Transport) Option {
	return func(c *Controller) {
		c.transport = t
	}
}

// Controller subscribes to the control subjects and posts events to a
// sink.
type Controller struct {
	conn       Connection
	sink       Sink
	sampleRate float64
	prefix     string
	params     Resolver
	transport  Transport
	logger     *slog.Logger
	lookahead  int64

	// The sink queue is FIFO, so events are held here and released in
	// time order. Stamps never go below the last released stamp.
	postMu     sync.Mutex
	pending    pendingEvents
	seq        uint64
	lastPosted int64
	released   bool

	received atomic.Uint64
	posted   atomic.Uint64
	dropped  atomic.Uint64
	rejected atomic.Uint64
}

// New returns a controller posting to sink at sampleRate.
func New(conn Connection, sink Sink, sampleRate float64, opts ...Option) (*Controller, error) {
	if conn == nil || sink == nil {
		return nil, ErrNoConnection
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("control: sample rate must be > 0: %f", sampleRate)
	}

	c := &Controller{
		conn:       conn,
		sink:       sink,
		sampleRate: sampleRate,
		prefix:     DefaultPrefix,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subject returns the full subject for a suffix such as "param".
func (c *Controller) Subject(suffix string) string {
	return c.prefix + "." + suffix
}

// Start subscribes to the param, midi and transport subjects.
func (c *Controller) Start() error {
	handlers := []struct {
		suffix string
		cb     nats.MsgHandler
	}{
		{"param", c.handleParam},
		{"midi", c.handleMIDI},
		{"transport", c.handleTransport},
	}

	for _, h := range handlers {
		subject := c.Subject(h.suffix)
		if _, err := c.conn.Subscribe(subject, h.cb); err != nil {
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
	}

	c.logger.Info("control subscribed", "prefix", c.prefix)
	return nil
}

// Pending returns how many stamped events are held for later release.
func (c *Controller) Pending() int {
	c.postMu.Lock()
	defer c.postMu.Unlock()
	return c.pending.Len()
}

// Pump releases every held event that is due at the sink's current
// sample time and returns how many were posted.
func (c *Controller) Pump() int {
	c.postMu.Lock()
	defer c.postMu.Unlock()
	return c.release(c.sink.SampleTime())
}

// Run calls Pump every interval until ctx is done. Without it, held
// events are only released when the next message arrives.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Pump()
		}
	}
}

// Close closes the connection.
func (c *Controller) Close() {
	c.conn.Close()
}

// Stats returns the message counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Received: c.received.Load(),
		Posted:   c.posted.Load(),
		Dropped:  c.dropped.Load(),
		Rejected: c.rejected.Load(),
	}
}

func (c *Controller) decode(msg *nats.Msg) (Message, bool) {
	c.received.Add(1)

	var m Message
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		c.reject(msg.Subject, err)
		return Message{}, false
	}
	return m, true
}

func (c *Controller) reject(subject string, err error) {
	c.rejected.Add(1)
	c.logger.Warn("control message rejected", "subject", subject, "error", err)
}

type eventBuilder func(now int64) (render.Event, error)

func (c *Controller) post(subject string, build eventBuilder) {
	c.postMu.Lock()
	defer c.postMu.Unlock()

	now := c.sink.SampleTime()
	e, err := build(now)
	if err != nil {
		c.reject(subject, err)
		return
	}

	if c.released && e.Time < c.lastPosted {
		e.Time = c.lastPosted
	}
	c.seq++
	c.pending.push(held{event: e, subject: subject, seq: c.seq})
	c.release(now)
}

// release posts held events stamped at or before now plus the lookahead.
// Caller holds postMu.
func (c *Controller) release(now int64) int {
	n := 0
	for {
		h, ok := c.pending.peek()
		if !ok || h.event.Time > now+c.lookahead {
			return n
		}
		c.pending.pop()

		e := h.event
		c.lastPosted = e.Time
		c.released = true
		if err := c.sink.Post(e); err != nil {
			c.dropped.Add(1)
			c.logger.Warn("control event dropped", "subject", h.subject, "kind", e.Kind, "error", err)
			continue
		}
		c.posted.Add(1)
		n++
		c.logger.Debug("control event posted", "kind", e.Kind, "time", e.Time, "address", e.Address, "value", e.Value)
	}
}

func (c *Controller) handleParam(msg *nats.Msg) {
	m, ok := c.decode(msg)
	if !ok {
		return
	}
	c.post(msg.Subject, func(now int64) (render.Event, error) {
		return m.paramEvent(now, c.sampleRate, c.params)
	})
}

func (c *Controller) handleMIDI(msg *nats.Msg) {
	m, ok := c.decode(msg)
	if !ok {
		return
	}
	c.post(msg.Subject, func(now int64) (render.Event, error) {
		return m.midiEvent(now, c.sampleRate)
	})
}

func (c *Controller) handleTransport(msg *nats.Msg) {
	m, ok := c.decode(msg)
	if !ok {
		return
	}
	if c.transport == nil {
		c.reject(msg.Subject, fmt.Errorf("%w: transport not enabled", ErrInvalidMessage))
		return
	}

	switch m.Command {
	case "start":
		c.transport.Start()
	case "stop":
		c.transport.Stop()
	default:
		c.reject(msg.Subject, fmt.Errorf("%w: command %q", ErrInvalidMessage, m.Command))
		return
	}
	c.logger.Info("transport", "command", m.Command)
}
