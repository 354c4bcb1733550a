// Package metrics provides Prometheus metrics for claim validation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for validation operations.
type Metrics struct {
	ValidationsTotal         *prometheus.CounterVec
	DateParseFailuresTotal   prometheus.Counter
	UnresolvedCountriesTotal prometheus.Counter
	ValidateLatency          prometheus.Histogram

	// Ledger cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// New registers and returns validation metrics collectors.
func New() *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripass_validations_total",
			Help: "Total number of validation runs, labeled by outcome",
		}, []string{"outcome"}),
		DateParseFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripass_date_parse_failures_total",
			Help: "Total number of document dates that failed normalization",
		}),
		UnresolvedCountriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripass_unresolved_countries_total",
			Help: "Total number of citizenship codes passed through unresolved",
		}),
		ValidateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripass_validate_latency_seconds",
			Help:    "Latency of validation runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripass_ledger_cache_hits_total",
			Help: "Total number of ledger cache hits",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripass_ledger_cache_misses_total",
			Help: "Total number of ledger cache misses",
		}),
	}
}

// Outcome labels for ValidationsTotal.
const (
	OutcomeValid            = "valid"
	OutcomeMismatch         = "mismatch"
	OutcomeAlreadyValidated = "already_validated"
	OutcomeError            = "error"
)

func (m *Metrics) RecordValidation(outcome string) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDateParseFailure() {
	m.DateParseFailuresTotal.Inc()
}

func (m *Metrics) RecordUnresolvedCountry() {
	m.UnresolvedCountriesTotal.Inc()
}

func (m *Metrics) ObserveValidateLatency(seconds float64) {
	m.ValidateLatency.Observe(seconds)
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}
