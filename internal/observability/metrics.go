package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion and analysis pipeline.
type Metrics struct {
	SourceFetches  *prometheus.CounterVec // labels: product, outcome={merged,empty,fetch_failed}
	RecordsMerged  *prometheus.CounterVec // labels: product
	RowsDropped    *prometheus.CounterVec // labels: product
	ArchiveRecords *prometheus.GaugeVec   // labels: product
	FetchDuration  *prometheus.HistogramVec

	CycleDuration      prometheus.Histogram
	FilteredDetections prometheus.Gauge
	Breakthroughs      prometheus.Gauge
	PipelineRunning    prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourceFetches,
		m.RecordsMerged,
		m.RowsDropped,
		m.ArchiveRecords,
		m.FetchDuration,
		m.CycleDuration,
		m.FilteredDetections,
		m.Breakthroughs,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavaflow",
			Name:      "source_fetches_total",
			Help:      "Per-product download attempts by outcome.",
		}, []string{"product", "outcome"}),
		RecordsMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavaflow",
			Name:      "records_merged_total",
			Help:      "Batch rows folded into archives.",
		}, []string{"product"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavaflow",
			Name:      "rows_dropped_total",
			Help:      "Batch rows dropped because a field failed to parse.",
		}, []string{"product"}),
		ArchiveRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lavaflow",
			Name:      "archive_records",
			Help:      "Records in each product archive after the last merge.",
		}, []string{"product"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lavaflow",
			Name:      "fetch_duration_seconds",
			Help:      "FIRMS area API request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"product"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lavaflow",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete ingest-analyze-track cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		FilteredDetections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lavaflow",
			Name:      "filtered_detections",
			Help:      "Detections passing the quality and window filters in the last cycle.",
		}),
		Breakthroughs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lavaflow",
			Name:      "breakthrough_events",
			Help:      "Breakthrough events extracted in the last cycle.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lavaflow",
			Name:      "pipeline_running",
			Help:      "1 while a cycle is executing, 0 otherwise.",
		}),
	}
}
