package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics observes document extraction and mission classification.
type PipelineMetrics struct {
	service  string
	registry *prometheus.Registry

	extractTotal     *prometheus.CounterVec
	extractDuration  *prometheus.HistogramVec
	extractInFlight  prometheus.Gauge
	classifyTotal    *prometheus.CounterVec
	classifyDuration *prometheus.HistogramVec
}

// NewPipelineMetrics registers into registry, or into a fresh one when nil.
func NewPipelineMetrics(service string, registry *prometheus.Registry) *PipelineMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	extractTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npscan",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total documents handled by status.",
		},
		[]string{"service", "status"},
	)
	extractDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "npscan",
			Subsystem: "pipeline",
			Name:      "document_duration_seconds",
			Help:      "Document extraction duration in seconds by status.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"service", "status"},
	)
	extractInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "npscan",
			Subsystem: "pipeline",
			Name:      "documents_in_flight",
			Help:      "Number of in-flight document extractions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npscan",
			Subsystem: "classifier",
			Name:      "calls_total",
			Help:      "Total classifier calls by status.",
		},
		[]string{"service", "status"},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "npscan",
			Subsystem: "classifier",
			Name:      "call_duration_seconds",
			Help:      "Classifier call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(extractTotal, extractDuration, extractInFlight, classifyTotal, classifyDuration)

	return &PipelineMetrics{
		service:          service,
		registry:         registry,
		extractTotal:     extractTotal,
		extractDuration:  extractDuration,
		extractInFlight:  extractInFlight,
		classifyTotal:    classifyTotal,
		classifyDuration: classifyDuration,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartDocument() {
	m.extractInFlight.Inc()
}

func (m *PipelineMetrics) FinishDocument(duration time.Duration, extracted bool) {
	m.extractInFlight.Dec()

	status := "extracted"
	if !extracted {
		status = "absent"
	}

	m.extractTotal.WithLabelValues(m.service, status).Inc()
	m.extractDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveClassification(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.classifyTotal.WithLabelValues(m.service, status).Inc()
	m.classifyDuration.WithLabelValues(m.service).Observe(duration.Seconds())
}
