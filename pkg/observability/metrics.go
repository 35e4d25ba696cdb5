package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the pipeline collectors. Each instance owns its registry so
// tests and multiple services never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	// AnalysesTotal counts analyses by detected dataset label
	AnalysesTotal *prometheus.CounterVec

	// MappingConfidence tracks the confidence of proposed mappings
	MappingConfidence prometheus.Histogram

	// CacheLookups counts analysis cache hits and misses
	CacheLookups *prometheus.CounterVec

	// ImportBatches counts import batches by verdict (valid, invalid, failed)
	ImportBatches *prometheus.CounterVec

	// ImportRows counts converted rows by outcome (valid, invalid)
	ImportRows *prometheus.CounterVec

	// SyntheticRecords counts generated records by source (patterns, default, siog)
	SyntheticRecords *prometheus.CounterVec

	// StageDuration tracks how long each pipeline stage takes
	StageDuration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intel_analyses_total",
				Help: "Total number of dataset analyses by label",
			},
			[]string{"label"},
		),
		MappingConfidence: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intel_mapping_confidence",
				Help:    "Confidence of proposed field mappings",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intel_analysis_cache_lookups_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		ImportBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intel_import_batches_total",
				Help: "Import batches by verdict",
			},
			[]string{"verdict"},
		),
		ImportRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intel_import_rows_total",
				Help: "Converted rows by validation outcome",
			},
			[]string{"outcome"},
		),
		SyntheticRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intel_synthetic_records_total",
				Help: "Synthetic records generated by source",
			},
			[]string{"source"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intel_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// ObserveStage records the elapsed time since start for a stage.
// Safe to call on a nil receiver.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
