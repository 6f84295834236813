package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "odds_gateway"

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Push outcomes
const (
	PushSent    = "sent"
	PushDropped = "dropped"
	PushSkipped = "skipped"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	UpstreamRequests   *prometheus.CounterVec
	UpstreamLatency    *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	StreamPushes       *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	SnapshotsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Freshness cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		StreamPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_pushes_total",
			Help:      "Streaming updates by lane and outcome.",
		}, []string{"lane", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_active_sessions",
			Help:      "Currently connected streaming sessions.",
		}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Snapshots written to the message bus by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.CacheLookups,
		m.StreamPushes,
		m.ActiveSessions,
		m.SnapshotsPublished,
	)

	return m
}

// NewNop returns collectors registered to a throwaway registry, for tests and tools
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
