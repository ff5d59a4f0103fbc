// Package metrics provides advisory source metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AdvisorMetrics contains Prometheus metrics for advisory text requests
type AdvisorMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	rateLimited     prometheus.Counter
}

// NewAdvisorMetrics creates and registers new advisor metrics
func NewAdvisorMetrics(registry *prometheus.Registry) (*AdvisorMetrics, error) {
	m := &AdvisorMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *AdvisorMetrics) initMetrics() error {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_advisor_requests_total",
			Help: "Total number of advisory text requests",
		},
		[]string{"status"},
	)

	m.requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigo_advisor_request_duration_seconds",
		Help:    "Time taken to obtain advisory text",
		Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
	})

	m.rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrigo_advisor_rate_limited_total",
		Help: "Total number of advisory requests that waited on the rate limiter",
	})

	return nil
}

// Describe implements the Collector interface
func (m *AdvisorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.rateLimited.Describe(ch)
}

// Collect implements the Collector interface
func (m *AdvisorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.rateLimited.Collect(ch)
}

// RecordRequest records an advisory request with its status
func (m *AdvisorMetrics) RecordRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// RecordRequestDuration records the request duration in seconds
func (m *AdvisorMetrics) RecordRequestDuration(seconds float64) {
	m.requestDuration.Observe(seconds)
}

// RecordRateLimited records a request delayed by the rate limiter
func (m *AdvisorMetrics) RecordRateLimited() {
	m.rateLimited.Inc()
}
