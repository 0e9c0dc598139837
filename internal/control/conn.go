package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Connection is the part of *nats.Conn the controller needs.
type Connection interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

// ConnectionAdapter adapts *nats.Conn to Connection.
type ConnectionAdapter struct {
	conn *nats.Conn
}

// NewConnectionAdapter wraps conn.
func NewConnectionAdapter(conn *nats.Conn) *ConnectionAdapter {
	return &ConnectionAdapter{conn: conn}
}

// Subscribe registers cb for subject.
func (a *ConnectionAdapter) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	return a.conn.Subscribe(subject, cb)
}

// Close drains nothing and closes the connection.
func (a *ConnectionAdapter) Close() {
	a.conn.Close()
}

// Connect dials url, retrying a few times before giving up. The client
// reconnects on its own once the first connection is up.
func Connect(ctx context.Context, url, name string, logger *slog.Logger, opts ...nats.Option) (*ConnectionAdapter, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts = append([]nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}, opts...)

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var nc *nats.Conn
		nc, err = nats.Connect(url, opts...)
		if err == nil {
			logger.Info("connected to nats", "url", url)
			return NewConnectionAdapter(nc), nil
		}

		logger.Warn("nats connect failed", "attempt", attempt, "of", connectAttempts, "error", err)
		if attempt == connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("connect to nats after %d attempts: %w", connectAttempts, err)
}
