// Package metrics 定义 Prometheus 指标
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "idea_inbox"

// Extraction Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_requests_total",
			Help:      "Total number of title/tag extraction requests",
		},
		[]string{"provider", "model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_request_duration_seconds",
			Help:      "Extraction request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	ExtractionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_tokens_total",
			Help:      "Total tokens consumed by extraction",
		},
		[]string{"provider", "model", "type"},
	)

	ExtractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_errors_total",
			Help:      "Total extraction errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	// CaptureTotal counts captures by outcome: "enriched" / "fallback" / "error"
	CaptureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_total",
			Help:      "Total captures by outcome",
		},
		[]string{"outcome"},
	)

	ExportArchivesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_archives_total",
			Help:      "Total archives produced",
		},
	)

	ExportDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_documents_total",
			Help:      "Total documents written into archives",
		},
	)

	// InboxNotes refreshed by the inbox stats task
	InboxNotes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notes",
			Help:      "Number of notes currently in the inbox",
		},
	)

	BackupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Total scheduled archive backups by status",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registerer.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ExtractionRequestsTotal,
			ExtractionRequestDuration,
			ExtractionTokensTotal,
			ExtractionErrorsTotal,
			CaptureTotal,
			ExportArchivesTotal,
			ExportDocumentsTotal,
			InboxNotes,
			BackupsTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
