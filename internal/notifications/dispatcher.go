package notifications

import (
	"context"
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
)

// Sink receives notification events.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}

// Dispatcher fans a created notification out to every sink. Sink failures are
// logged and counted; they never reach the caller.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher returns a Dispatcher over the non-nil sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// NotificationCreated publishes n to all sinks.
func (d *Dispatcher) NotificationCreated(ctx context.Context, n models.Notification, actor string) {
	observability.NotificationsCreated.WithLabelValues(n.Verb).Inc()
	if d == nil {
		return
	}
	event := NewCreatedEvent(n, actor)
	for _, s := range d.sinks {
		if err := s.Publish(ctx, event); err != nil {
			observability.NotificationPublishFailures.WithLabelValues(s.Name()).Inc()
			middleware.Logger.WarnContext(ctx, "notification fan-out failed",
				slog.String("sink", s.Name()),
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
}
