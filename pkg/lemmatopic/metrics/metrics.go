// Package metrics exposes run counters in the Prometheus format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lemmatopic"

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsRead      prometheus.Counter
	DocumentsSkipped   *prometheus.CounterVec // by stage
	ChunksEmitted      prometheus.Counter
	AnnotationSeconds  prometheus.Histogram
	VocabularySize     prometheus.Gauge
	StageSeconds       *prometheus.GaugeVec
	LastRunSuccessTime prometheus.Gauge
}

// New registers a fresh set of collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocumentsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_read_total",
			Help:      "Documents read from the input directory.",
		}),
		DocumentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Documents skipped after a recoverable failure.",
		}, []string{"stage"}),
		ChunksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_emitted_total",
			Help:      "Chunks added to the lemmatized corpus.",
		}),
		AnnotationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "annotation_seconds",
			Help:      "Time spent annotating one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		VocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Terms in the document-term matrix.",
		}),
		StageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_seconds",
			Help:      "Wall time of the last run per stage.",
		}, []string{"stage"}),
		LastRunSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.Registry.MustRegister(
		m.DocumentsRead,
		m.DocumentsSkipped,
		m.ChunksEmitted,
		m.AnnotationSeconds,
		m.VocabularySize,
		m.StageSeconds,
		m.LastRunSuccessTime,
	)
	return m
}

// ObserveStage records how long a stage took since start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// Skipped counts a skipped document.
func (m *Metrics) Skipped(stage string) {
	if m == nil {
		return
	}
	m.DocumentsSkipped.WithLabelValues(stage).Inc()
}

// Succeeded stamps the success time.
func (m *Metrics) Succeeded() {
	if m == nil {
		return
	}
	m.LastRunSuccessTime.SetToCurrentTime()
}

// WriteFile writes the registry in text format for a node-exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
