// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waverider_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waverider_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ActiveWebSockets is the gauge of active feed WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "waverider_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// FeedEventsTotal counts realtime feed events by type.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waverider_feed_events_total",
		Help: "Total realtime feed events by type",
	}, []string{"event_type"})

	// WebSocketDrops counts feed messages dropped on slow or closed clients.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waverider_websocket_dropped_messages_total",
		Help: "Total WebSocket messages dropped by reason",
	}, []string{"reason"})

	// BlobOperations counts blob store operations by kind and outcome.
	BlobOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waverider_blob_operations_total",
		Help: "Total blob store operations by kind and outcome",
	}, []string{"operation", "outcome"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
