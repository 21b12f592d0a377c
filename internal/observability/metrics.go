package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// translation pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	RecordsPublished prometheus.Counter
	TranslateErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize         prometheus.Histogram
	BatchDuration     prometheus.Histogram
	TranslateDuration prometheus.Histogram

	// Parameter registry metrics.
	RegistryRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	RegistryCache       *prometheus.CounterVec // labels: result={hit,miss}
	RegistryAPIDuration prometheus.Histogram
	RegistryEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gribmeta",
			Name:      "messages_consumed_total",
			Help:      "Total section documents read from the source topic.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gribmeta",
			Name:      "records_published_total",
			Help:      "Total metadata records written to the sink topic.",
		}),
		TranslateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gribmeta",
			Name:      "translate_errors_total",
			Help:      "Total translation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gribmeta",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gribmeta",
			Name:      "batch_size",
			Help:      "Number of section documents per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gribmeta",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-translate-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		TranslateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gribmeta",
			Name:      "translate_duration_seconds",
			Help:      "Duration of a single section-to-record translation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		RegistryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gribmeta",
			Name:      "registry_requests_total",
			Help:      "Parameter registry requests by outcome.",
		}, []string{"outcome"}),
		RegistryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gribmeta",
			Name:      "registry_cache_total",
			Help:      "Parameter registry cache lookups by result.",
		}, []string{"result"}),
		RegistryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gribmeta",
			Name:      "registry_api_duration_seconds",
			Help:      "Parameter registry request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RegistryEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gribmeta",
			Name:      "registry_enabled",
			Help:      "1 when parameter registry lookups are enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.RecordsPublished,
		m.TranslateErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchDuration,
		m.TranslateDuration,
		m.RegistryRequests,
		m.RegistryCache,
		m.RegistryAPIDuration,
		m.RegistryEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "gribmeta", Name: "messages_consumed_total"}),
		RecordsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "gribmeta", Name: "records_published_total"}),
		TranslateErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "gribmeta", Name: "translate_errors_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gribmeta", Name: "pipeline_running"}),
		BatchSize:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "gribmeta", Name: "batch_size"}),
		BatchDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "gribmeta", Name: "batch_processing_duration_seconds"}),
		TranslateDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "gribmeta", Name: "translate_duration_seconds"}),
		RegistryRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "gribmeta", Name: "registry_requests_total"}, []string{"outcome"}),
		RegistryCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "gribmeta", Name: "registry_cache_total"}, []string{"result"}),
		RegistryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "gribmeta", Name: "registry_api_duration_seconds"}),
		RegistryEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gribmeta", Name: "registry_enabled"}),
	}
}
