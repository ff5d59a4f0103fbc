// Package metrics provides irrigation planning metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PlannerMetrics contains Prometheus metrics for irrigation planning
type PlannerMetrics struct {
	registry *prometheus.Registry

	plansTotal     *prometheus.CounterVec
	decisionsTotal *prometheus.CounterVec
	planDuration   prometheus.Histogram
	lastRainMm     prometheus.Gauge
	batchSize      prometheus.Histogram
}

// NewPlannerMetrics creates and registers new planner metrics
func NewPlannerMetrics(registry *prometheus.Registry) (*PlannerMetrics, error) {
	m := &PlannerMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *PlannerMetrics) initMetrics() error {
	m.plansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_plans_total",
			Help: "Total number of irrigation plans by outcome",
		},
		[]string{"outcome"},
	)

	m.decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_plan_decisions_total",
			Help: "Total number of classified irrigation decisions",
		},
		[]string{"decision"}, // irrigate, do_not_irrigate, unclear
	)

	m.planDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "irrigo_plan_duration_seconds",
		Help: "End-to-end time taken to produce an irrigation plan",
		// 10ms to ~40s
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
	})

	m.lastRainMm = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "irrigo_plan_last_rain_mm",
		Help: "Aggregated forecast rain of the most recent plan in millimetres",
	})

	m.batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigo_plan_batch_size",
		Help:    "Number of plans requested per batch",
		Buckets: []float64{1, 2, 5, 10, 20},
	})

	return nil
}

// Describe implements the Collector interface
func (m *PlannerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.plansTotal.Describe(ch)
	m.decisionsTotal.Describe(ch)
	m.planDuration.Describe(ch)
	m.lastRainMm.Describe(ch)
	m.batchSize.Describe(ch)
}

// Collect implements the Collector interface
func (m *PlannerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.plansTotal.Collect(ch)
	m.decisionsTotal.Collect(ch)
	m.planDuration.Collect(ch)
	m.lastRainMm.Collect(ch)
	m.batchSize.Collect(ch)
}

// RecordPlan records a finished plan with its outcome
func (m *PlannerMetrics) RecordPlan(outcome string) {
	m.plansTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision records a classified decision
func (m *PlannerMetrics) RecordDecision(decision string) {
	m.decisionsTotal.WithLabelValues(decision).Inc()
}

// RecordPlanDuration records plan duration in seconds
func (m *PlannerMetrics) RecordPlanDuration(seconds float64) {
	m.planDuration.Observe(seconds)
}

// SetLastRain sets the aggregated rain of the latest plan
func (m *PlannerMetrics) SetLastRain(mm float64) {
	m.lastRainMm.Set(mm)
}

// RecordBatch records the size of a batch request
func (m *PlannerMetrics) RecordBatch(size int) {
	m.batchSize.Observe(float64(size))
}
