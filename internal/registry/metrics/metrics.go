package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry lookups.
type Metrics struct {
	// Upstream call latency by operation (by_id, by_name, ...)
	LookupLatency *prometheus.HistogramVec

	// Failed lookups by operation and error category
	LookupErrors *prometheus.CounterVec

	// Retries issued after retryable failures
	LookupRetries *prometheus.CounterVec

	// Lookup response cache hits and misses by operation
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New registers registry metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LookupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "companygraph_registry_lookup_duration_seconds",
			Help:    "Duration of registry lookups by operation, including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),

		LookupErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_registry_lookup_errors_total",
			Help: "Registry lookups that failed after retries, by operation and category",
		}, []string{"operation", "category"}),

		LookupRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_registry_lookup_retries_total",
			Help: "Registry lookup retries by operation",
		}, []string{"operation"}),

		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_registry_cache_hits_total",
			Help: "Lookup response cache hits by operation",
		}, []string{"operation"}),

		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_registry_cache_misses_total",
			Help: "Lookup response cache misses by operation",
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveLookup(operation string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementError(operation, category string) {
	if m != nil {
		m.LookupErrors.WithLabelValues(operation, category).Inc()
	}
}

func (m *Metrics) IncrementRetry(operation string) {
	if m != nil {
		m.LookupRetries.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RecordCacheHit(operation string) {
	if m != nil {
		m.CacheHits.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RecordCacheMiss(operation string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(operation).Inc()
	}
}
