package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	ReconciliationRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_repairs_total",
			Help: "Total number of documents rewritten by a reconciliation pass",
		},
		[]string{"entity"},
	)

	CascadeDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_deletes_total",
			Help: "Total number of documents touched by user deletions",
		},
		[]string{"entity"},
	)

	Reactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactions_total",
			Help: "Total number of applied reactions",
		},
		[]string{"target", "outcome"},
	)

	FollowToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_toggles_total",
			Help: "Total number of follow toggles",
		},
		[]string{"action"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		ActiveConnections,
		ReconciliationRepairs,
		CascadeDeletes,
		Reactions,
		FollowToggles,
	)
}
