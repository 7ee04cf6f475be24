package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	DroppedRecords   *prometheus.CounterVec
	FeedFailures     *prometheus.CounterVec
}

// New registers the collectors on reg under the given namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests to upstream providers by outcome",
		}, []string{"provider", "outcome"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound upstream requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key and result",
		}, []string{"key", "result"}),
		DroppedRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_flight_records_total",
			Help:      "Flight records dropped during normalization",
		}, []string{"category", "reason"}),
		FeedFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_failures_total",
			Help:      "Upstream flight feeds that failed during aggregation",
		}, []string{"feed"}),
	}
}

func (m *Metrics) ObserveUpstream(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(provider).Observe(took.Seconds())
}

func (m *Metrics) CacheLookup(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(key, result).Inc()
}

func (m *Metrics) Dropped(category, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DroppedRecords.WithLabelValues(category, reason).Add(float64(n))
}

func (m *Metrics) FeedFailed(feed string) {
	if m == nil {
		return
	}
	m.FeedFailures.WithLabelValues(feed).Inc()
}
