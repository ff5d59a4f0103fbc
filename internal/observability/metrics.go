// Package observability provides Prometheus metrics for monitoring irrigo.
// Sentry error telemetry is handled in the telemetry package.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/irrigo/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Forecast *metrics.ForecastMetrics
	Advisor  *metrics.AdvisorMetrics
	Planner  *metrics.PlannerMetrics
	HTTP     *metrics.HTTPMetrics
	Notify   *metrics.NotifyMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors
// on a private registry together with the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	forecastMetrics, err := metrics.NewForecastMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forecast metrics: %w", err)
	}

	advisorMetrics, err := metrics.NewAdvisorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Advisor metrics: %w", err)
	}

	plannerMetrics, err := metrics.NewPlannerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Planner metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	notifyMetrics, err := metrics.NewNotifyMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Notify metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Forecast: forecastMetrics,
		Advisor:  advisorMetrics,
		Planner:  plannerMetrics,
		HTTP:     httpMetrics,
		Notify:   notifyMetrics,
	}, nil
}

// Registry returns the registry all collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
