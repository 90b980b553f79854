// Package metrics exposes Prometheus instrumentation for the extraction
// pipeline on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	pagesPerDocument   prometheus.Histogram
	retriesTotal       *prometheus.CounterVec
	tokensTotal        *prometheus.CounterVec
	costTotal          *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerlens",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledgerlens",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgerlens",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerlens",
			Subsystem: "extraction",
			Name:      "documents_total",
			Help:      "Total processed documents by provider, template and status.",
		},
		[]string{"provider", "template", "status"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledgerlens",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "End-to-end document extraction duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"provider", "template"},
	)
	pagesPerDocument := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ledgerlens",
			Subsystem: "extraction",
			Name:      "pages_per_document",
			Help:      "Distribution of page counts per processed document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerlens",
			Subsystem: "reprocess",
			Name:      "retries_total",
			Help:      "Total reprocessing attempts by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)
	tokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerlens",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage by provider, model and direction.",
		},
		[]string{"provider", "model", "direction"},
	)
	costTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerlens",
			Subsystem: "llm",
			Name:      "cost_usd_total",
			Help:      "Accumulated model cost in USD by provider and model.",
		},
		[]string{"provider", "model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		extractionDuration,
		pagesPerDocument,
		retriesTotal,
		tokensTotal,
		costTotal,
	)

	return &Metrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		extractionsTotal:   extractionsTotal,
		extractionDuration: extractionDuration,
		pagesPerDocument:   pagesPerDocument,
		retriesTotal:       retriesTotal,
		tokensTotal:        tokensTotal,
		costTotal:          costTotal,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestStarted() {
	m.requestInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, path string, status int, duration time.Duration) {
	m.requestInFlight.Dec()
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordExtraction(provider, template string, pages int, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.extractionsTotal.WithLabelValues(provider, template, status).Inc()
	m.extractionDuration.WithLabelValues(provider, template).Observe(duration.Seconds())
	if pages > 0 {
		m.pagesPerDocument.Observe(float64(pages))
	}
}

func (m *Metrics) RecordRetry(strategy string, succeeded bool) {
	if strategy == "" {
		strategy = "unknown"
	}
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	m.retriesTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) RecordTokenUsage(provider, model string, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	if promptTokens > 0 {
		m.tokensTotal.WithLabelValues(provider, model, "in").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.tokensTotal.WithLabelValues(provider, model, "out").Add(float64(completionTokens))
	}
}

func (m *Metrics) RecordCost(provider, model string, costUSD float64) {
	if costUSD <= 0 {
		return
	}
	if model == "" {
		model = "unknown"
	}
	m.costTotal.WithLabelValues(provider, model).Add(costUSD)
}
