// Package metrics provides plan delivery metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Delivery sink label values.
const (
	// SinkMQTT labels deliveries to the MQTT broker.
	SinkMQTT = "mqtt"
	// SinkPush labels push notifications.
	SinkPush = "push"
)

// NotifyMetrics contains Prometheus metrics for delivering finished plans
// to MQTT and push notification services
type NotifyMetrics struct {
	registry *prometheus.Registry

	deliveriesTotal  *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	messageSize      prometheus.Histogram
	mqttConnected    prometheus.Gauge
}

// NewNotifyMetrics creates and registers new delivery metrics
func NewNotifyMetrics(registry *prometheus.Registry) (*NotifyMetrics, error) {
	m := &NotifyMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *NotifyMetrics) initMetrics() error {
	m.deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irrigo_plan_deliveries_total",
			Help: "Total number of plan deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	m.deliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "irrigo_plan_delivery_duration_seconds",
			Help:    "Time taken to deliver a plan",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
		},
		[]string{"sink"},
	)

	m.messageSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigo_mqtt_message_size_bytes",
		Help:    "Size of plan messages published to MQTT",
		Buckets: prometheus.ExponentialBuckets(256, BucketFactor2, BucketCount10),
	})

	m.mqttConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "irrigo_mqtt_connected",
		Help: "Whether the MQTT client is connected to the broker (1) or not (0)",
	})

	return nil
}

// Describe implements the Collector interface
func (m *NotifyMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.deliveriesTotal.Describe(ch)
	m.deliveryDuration.Describe(ch)
	m.messageSize.Describe(ch)
	m.mqttConnected.Describe(ch)
}

// Collect implements the Collector interface
func (m *NotifyMetrics) Collect(ch chan<- prometheus.Metric) {
	m.deliveriesTotal.Collect(ch)
	m.deliveryDuration.Collect(ch)
	m.messageSize.Collect(ch)
	m.mqttConnected.Collect(ch)
}

// RecordDelivery records one delivery attempt to sink
func (m *NotifyMetrics) RecordDelivery(sink, status string, seconds float64) {
	m.deliveriesTotal.WithLabelValues(sink, status).Inc()
	m.deliveryDuration.WithLabelValues(sink).Observe(seconds)
}

// ObserveMessageSize records the size of a published MQTT message
func (m *NotifyMetrics) ObserveMessageSize(bytes int) {
	m.messageSize.Observe(float64(bytes))
}

// SetMQTTConnected updates the broker connection gauge
func (m *NotifyMetrics) SetMQTTConnected(connected bool) {
	if connected {
		m.mqttConnected.Set(1)
	} else {
		m.mqttConnected.Set(0)
	}
}
