// Package metrics exposes Prometheus instrumentation for extraction and
// catalog lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitesmith"

// Extraction outcomes.
const (
	ResultCached    = "cached"
	ResultExtracted = "extracted"
	ResultFailed    = "failed"
	ResultInvalid   = "invalid"
)

// Metrics holds the service's collectors. A nil *Metrics records nothing.
type Metrics struct {
	Extractions         *prometheus.CounterVec
	ExtractionDuration  prometheus.Histogram
	ExtractionTokens    prometheus.Counter
	PersistenceFailures prometheus.Counter
	CatalogLookups      *prometheus.CounterVec
	LowCompleteness     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers collectors on reg. Tests pass a fresh prometheus.NewRegistry
// to avoid duplicate registration on the default registry.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction requests by result (cached, extracted, failed, invalid)",
		}, []string{"result"}),
		ExtractionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent in the external extraction capability",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 180, 300},
		}),
		ExtractionTokens: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_tokens_total",
			Help:      "Model tokens consumed by extractions",
		}),
		PersistenceFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_persist_failures_total",
			Help:      "Extracted profiles that could not be written to the store",
		}),
		CatalogLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "industry_lookups_total",
			Help:      "Industry lookups by outcome (hit, fallback)",
		}, []string{"outcome"}),
		LowCompleteness: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_completeness_profiles_total",
			Help:      "Extracted profiles scoring below the completeness warning threshold",
		}),
		gatherer: gatherer,
	}
}

// NewDefault registers on the process-wide default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// Handler returns the /metrics endpoint for the registry m was built on.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Extraction(result string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(result).Inc()
}

func (m *Metrics) ExtractionCost(elapsed time.Duration, tokens int64) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Observe(elapsed.Seconds())
	if tokens > 0 {
		m.ExtractionTokens.Add(float64(tokens))
	}
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

func (m *Metrics) IndustryLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "hit"
	if !hit {
		outcome = "fallback"
	}
	m.CatalogLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LowCompletenessProfile() {
	if m == nil {
		return
	}
	m.LowCompleteness.Inc()
}
