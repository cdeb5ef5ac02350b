// SPDX-License-Identifier: EPL-2.0

// Package metrics provides extraction metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of extractions_total.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// ExtractionMetrics contains Prometheus metrics for waveform extraction.
// A nil *ExtractionMetrics is valid and records nothing.
type ExtractionMetrics struct {
	// Admission metrics
	permitsInUse prometheus.Gauge
	queueDepth   prometheus.Gauge

	// Task metrics
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec

	// Host metrics
	droppedUpdates prometheus.Counter
	cacheLookups   *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewExtractionMetrics creates and registers new extraction metrics
func NewExtractionMetrics(registry prometheus.Registerer) (*ExtractionMetrics, error) {
	m := &ExtractionMetrics{}
	m.initMetrics()

	if err := registry.Register(m); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *ExtractionMetrics) initMetrics() {
	m.permitsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audwave_admission_permits_in_use",
		Help: "Number of extractions currently holding a decode permit",
	})

	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audwave_admission_queue_depth",
		Help: "Number of extractions waiting for a decode permit",
	})

	m.extractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audwave_extractions_total",
			Help: "Total number of finished extractions",
		},
		[]string{"outcome"},
	)

	m.extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audwave_extraction_duration_seconds",
			Help:    "Time from admission to the end of an extraction",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"outcome"},
	)

	m.droppedUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audwave_listener_dropped_updates_total",
		Help: "Total number of updates dropped because the listener fell behind",
	})

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audwave_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"},
	)

	m.collectors = []prometheus.Collector{
		m.permitsInUse,
		m.queueDepth,
		m.extractionsTotal,
		m.extractionDuration,
		m.droppedUpdates,
		m.cacheLookups,
	}
}

// Describe implements the Collector interface
func (m *ExtractionMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ExtractionMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// SetAdmission records the permits in use and the queue depth.
func (m *ExtractionMetrics) SetAdmission(inUse, queued int) {
	if m == nil {
		return
	}
	m.permitsInUse.Set(float64(inUse))
	m.queueDepth.Set(float64(queued))
}

// RecordExtraction counts a finished extraction. A zero duration is not
// observed, as for extractions cancelled before they started.
func (m *ExtractionMetrics) RecordExtraction(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.extractionDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *ExtractionMetrics) RecordDroppedUpdate() {
	if m == nil {
		return
	}
	m.droppedUpdates.Inc()
}

// RecordCacheLookup counts a result cache hit or miss.
func (m *ExtractionMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
