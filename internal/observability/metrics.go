// Package observability holds the Prometheus collectors and OpenTelemetry setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache-aside lookups by outcome",
	}, []string{"outcome"})

	// InteractionsTotal counts social interactions by kind and result.
	InteractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_interactions_total",
		Help: "Follow, unfollow, like and unlike operations by result",
	}, []string{"kind", "result"})

	// NotificationsCreated counts notifications written to the store by verb.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notifications_created_total",
		Help: "Notifications created by verb",
	}, []string{"verb"})

	// NotificationPublishFailures counts best-effort fan-out failures by sink.
	NotificationPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notification_publish_failures_total",
		Help: "Notification fan-out failures by sink",
	}, []string{"sink"})

	// WebSocketConnectionsTotal is the gauge of active notification stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// RecordInteraction increments InteractionsTotal for kind, labelling err as its result.
func RecordInteraction(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	InteractionsTotal.WithLabelValues(kind, result).Inc()
}
