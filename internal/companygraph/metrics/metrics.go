package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for company graph resolution.
type Metrics struct {
	// Resolutions by search mode and outcome
	ResolveOutcome *prometheus.CounterVec

	// End to end resolution latency by search mode
	ResolveLatency *prometheus.HistogramVec

	// Size of the connected set returned per resolution
	CompaniesPerResolution prometheus.Histogram

	// Juristic person names answered from the session cache
	JuristicCacheHits prometheus.Counter

	// Lookups the traversal treated as "no data" after a failure, by operation and category
	LookupFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ResolveOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_resolve_outcomes_total",
			Help: "Company graph resolutions by search mode and outcome",
		}, []string{"search_by", "outcome"}),

		ResolveLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "companygraph_resolve_duration_seconds",
			Help:    "Duration of company graph resolution by search mode",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"search_by"}),

		CompaniesPerResolution: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "companygraph_resolve_companies",
			Help:    "Number of companies in a resolved graph",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		JuristicCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "companygraph_juristic_cache_hits_total",
			Help: "Juristic person lookups answered from the per-query cache",
		}),

		LookupFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "companygraph_lookup_failures_total",
			Help: "Registry lookups degraded to empty results, by operation and category",
		}, []string{"operation", "category"}),
	}
}

func (m *Metrics) IncrementOutcome(searchBy, outcome string) {
	if m != nil {
		m.ResolveOutcome.WithLabelValues(searchBy, outcome).Inc()
	}
}

func (m *Metrics) ObserveResolve(searchBy string, d time.Duration, companies int) {
	if m != nil {
		m.ResolveLatency.WithLabelValues(searchBy).Observe(d.Seconds())
		m.CompaniesPerResolution.Observe(float64(companies))
	}
}

func (m *Metrics) IncrementJuristicCacheHit() {
	if m != nil {
		m.JuristicCacheHits.Inc()
	}
}

func (m *Metrics) IncrementLookupFailure(operation, category string) {
	if m != nil {
		m.LookupFailures.WithLabelValues(operation, category).Inc()
	}
}
