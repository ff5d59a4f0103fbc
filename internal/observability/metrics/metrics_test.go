package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewForecastMetrics(registry)
	require.NoError(t, err)

	m.RecordFetch("openweather", StatusSuccess)
	m.RecordFetch("openweather", StatusSuccess)
	m.RecordFetch("yrno", StatusError)
	m.RecordFetchError("yrno", "http_status")
	m.RecordCacheHit()
	m.RecordSamples("openweather", 40)
	m.RecordFetchDuration("openweather", 0.25)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("openweather", StatusSuccess)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("yrno", StatusError)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.cacheHitsTotal), 1e-9)
	assert.InDelta(t, 40.0, testutil.ToFloat64(m.samplesReceived.WithLabelValues("openweather")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestForecastMetrics_DoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewForecastMetrics(registry)
	require.NoError(t, err)

	_, err = NewForecastMetrics(registry)
	assert.Error(t, err)
}

func TestPlannerMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPlannerMetrics(registry)
	require.NoError(t, err)

	m.RecordPlan(OutcomeEstimated)
	m.RecordPlan(OutcomeNotApplicable)
	m.RecordDecision("irrigate")
	m.SetLastRain(3.5)
	m.RecordPlanDuration(0.05)
	m.RecordBatch(3)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.plansTotal.WithLabelValues(OutcomeEstimated)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.decisionsTotal.WithLabelValues("irrigate")), 1e-9)
	assert.InDelta(t, 3.5, testutil.ToFloat64(m.lastRainMm), 1e-9)

	families, err := registry.Gather()
	require.NoError(t, err)

	var hist *dto.Histogram
	for _, f := range families {
		if f.GetName() == "irrigo_plan_duration_seconds" {
			hist = f.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(1), hist.GetSampleCount())
	assert.InDelta(t, 0.05, hist.GetSampleSum(), 1e-9)
}

func TestAdvisorAndHTTPMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	advisor, err := NewAdvisorMetrics(registry)
	require.NoError(t, err)
	httpMetrics, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	advisor.RecordRequest(StatusError)
	advisor.RecordRateLimited()
	advisor.RecordRequestDuration(1.2)
	httpMetrics.RecordHTTPRequest("POST", "/api/v1/plan", "200", 0.1)

	assert.InDelta(t, 1.0, testutil.ToFloat64(advisor.requestsTotal.WithLabelValues(StatusError)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(advisor.rateLimited), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(httpMetrics.httpRequestsTotal.WithLabelValues("POST", "/api/v1/plan", "200")), 1e-9)
}

func TestNotifyMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewNotifyMetrics(registry)
	require.NoError(t, err)

	m.RecordDelivery(SinkMQTT, StatusSuccess, 0.02)
	m.RecordDelivery(SinkMQTT, StatusSuccess, 0.03)
	m.RecordDelivery(SinkPush, StatusError, 1.5)
	m.ObserveMessageSize(900)
	m.SetMQTTConnected(true)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.deliveriesTotal.WithLabelValues(SinkMQTT, StatusSuccess)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.deliveriesTotal.WithLabelValues(SinkPush, StatusError)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.mqttConnected), 1e-9)
	assert.Equal(t, 2, testutil.CollectAndCount(m.deliveryDuration))

	m.SetMQTTConnected(false)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.mqttConnected), 1e-9)
}
