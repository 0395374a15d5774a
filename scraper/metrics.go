package scraper

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for an ETL run.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	RecordsExtracted prometheus.Counter
	RowsSkipped      prometheus.Counter
	RecordsLoaded    *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banks_etl_requests_total",
			Help: "Total HTTP requests issued by the extractor.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "banks_etl_request_duration_seconds",
			Help:    "HTTP request latency for extractor requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	extracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "banks_etl_records_extracted_total",
			Help: "Total number of records extracted from the source table.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "banks_etl_rows_skipped_total",
			Help: "Total number of table rows skipped for an unexpected cell count.",
		},
	)
	loaded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banks_etl_records_loaded_total",
			Help: "Total number of records written, by sink.",
		},
		[]string{"sink"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banks_etl_errors_total",
			Help: "Total number of ETL errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, extracted, skipped, loaded, errorsTotal)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		RecordsExtracted: extracted,
		RowsSkipped:      skipped,
		RecordsLoaded:    loaded,
		ErrorsTotal:      errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddExtracted adds n to the extracted records counter.
func (m *Metrics) AddExtracted(n int) {
	if m == nil {
		return
	}
	m.RecordsExtracted.Add(float64(n))
}

// IncSkipped increments the skipped rows counter.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.RowsSkipped.Inc()
}

// AddLoaded adds n to the loaded records counter for a sink.
func (m *Metrics) AddLoaded(sink string, n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.WithLabelValues(sink).Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
