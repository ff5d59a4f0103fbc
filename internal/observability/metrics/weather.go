// Package metrics provides forecast provider metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ForecastMetrics contains Prometheus metrics for forecast retrieval
type ForecastMetrics struct {
	registry *prometheus.Registry

	fetchesTotal    *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	cacheHitsTotal  prometheus.Counter
	samplesReceived *prometheus.CounterVec
}

// NewForecastMetrics creates and registers new forecast metrics
func NewForecastMetrics(registry *prometheus.Registry) (*ForecastMetrics, error) {
	m := &ForecastMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *ForecastMetrics) initMetrics() error {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_forecast_fetches_total",
			Help: "Total number of forecast fetch operations",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	m.fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_forecast_fetch_errors_total",
			Help: "Total number of forecast fetch errors",
		},
		[]string{"provider", "error_type"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "irrigo_forecast_fetch_duration_seconds",
			Help: "Time taken to fetch forecast data",
			// 0.1s to ~51s, covering slow upstreams and retries
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"provider"},
	)

	m.cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irrigo_forecast_cache_hits_total",
		Help: "Total number of forecasts served from cache",
	})

	m.samplesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_forecast_samples_total",
			Help: "Total number of rain samples received from providers",
		},
		[]string{"provider"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *ForecastMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrors.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
	m.samplesReceived.Describe(ch)
}

// Collect implements the Collector interface
func (m *ForecastMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrors.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
	m.samplesReceived.Collect(ch)
}

// RecordFetch records a forecast fetch operation
func (m *ForecastMetrics) RecordFetch(provider, status string) {
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
}

// RecordFetchError records a forecast fetch error
func (m *ForecastMetrics) RecordFetchError(provider, errorType string) {
	m.fetchErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordFetchDuration records the duration of a forecast fetch in seconds
func (m *ForecastMetrics) RecordFetchDuration(provider string, seconds float64) {
	m.fetchDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheHit records a forecast served from cache
func (m *ForecastMetrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}

// RecordSamples records the number of samples a provider returned
func (m *ForecastMetrics) RecordSamples(provider string, count int) {
	m.samplesReceived.WithLabelValues(provider).Add(float64(count))
}
