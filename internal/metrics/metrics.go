package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basegraph.app/siemd/internal/model"
)

// Handler holds the ingestion collectors, registered on a private registry.
type Handler struct {
	registry *prometheus.Registry

	EventsTotal        prometheus.Counter
	BatchesTotal       prometheus.Counter
	LinesSkippedTotal  *prometheus.CounterVec
	FilesFailedTotal   prometheus.Counter
	ScanDuration       prometheus.Histogram
	LastScanTimestamp  prometheus.Gauge
	BatchFailuresTotal prometheus.Counter
}

func New() *Handler {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	h := &Handler{
		registry: registry,
		EventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "siemd_ingest_events_total",
			Help: "The total number of events inserted",
		}),
		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "siemd_ingest_batches_total",
			Help: "The total number of batch transactions attempted",
		}),
		LinesSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "siemd_ingest_lines_skipped_total",
			Help: "The total number of consumed lines that produced no event",
		}, []string{"reason"}),
		FilesFailedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "siemd_ingest_files_failed_total",
			Help: "The total number of files whose drain failed in a scan pass",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "siemd_ingest_scan_duration_seconds",
			Help:    "The duration of full scan passes",
			Buckets: prometheus.DefBuckets,
		}),
		LastScanTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "siemd_ingest_last_scan_timestamp_seconds",
			Help: "Unix time at which the last scan pass finished",
		}),
		BatchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "siemd_ingest_batch_failures_total",
			Help: "The total number of batch transactions rolled back",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return h
}

// ObserveBatch records one committed or attempted batch.
func (h *Handler) ObserveBatch(inserted int, stats model.Stats) {
	h.BatchesTotal.Inc()
	h.EventsTotal.Add(float64(inserted))
	for reason, n := range stats.ByReason() {
		h.LinesSkippedTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
}

func (h *Handler) IncBatchFailures() {
	h.BatchFailuresTotal.Inc()
}

func (h *Handler) IncFilesFailed() {
	h.FilesFailedTotal.Inc()
}

// ObserveScan records the duration of a finished scan pass.
func (h *Handler) ObserveScan(duration time.Duration, finishedAt time.Time) {
	h.ScanDuration.Observe(duration.Seconds())
	h.LastScanTimestamp.Set(float64(finishedAt.Unix()))
}

// HTTPHandler exposes the registry in the Prometheus text format.
func (h *Handler) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{Registry: h.registry})
}

func (h *Handler) Registry() *prometheus.Registry {
	return h.registry
}
