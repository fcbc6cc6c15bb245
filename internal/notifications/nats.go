package notifications

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/middleware"

	"github.com/nats-io/nats.go"
)

// NATSSubject carries every created notification for downstream consumers.
const NATSSubject = "notifications.created"

// ConnectNATS dials url with reconnect handling. An empty url disables NATS.
func ConnectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}
	return nats.Connect(url,
		nats.Name("agora-api"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				middleware.Logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			middleware.Logger.Info("NATS reconnected")
		}),
	)
}

// NATSPublisher publishes notification events on NATSSubject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher wraps conn. A nil conn makes Publish a no-op.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: NATSSubject}
}

// Name identifies the sink in logs and metrics.
func (p *NATSPublisher) Name() string { return "nats" }

// Publish sends the event; it returns nats.ErrConnectionClosed once the conn is closed.
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	if p.conn == nil {
		return nil
	}
	if p.conn.IsClosed() {
		return nats.ErrConnectionClosed
	}
	data, err := event.Marshal()
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil && !p.conn.IsClosed() {
		_ = p.conn.Drain()
	}
}
