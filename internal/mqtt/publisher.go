package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
	"github.com/tphakala/irrigo/internal/planner"
)

// Publisher sends finished plans to the broker, one retained message per
// crop topic. It implements planner.Notifier.
type Publisher struct {
	client    Client
	baseTopic string
	timeout   time.Duration
	metrics   *metrics.NotifyMetrics
}

// NewPublisher creates a plan publisher. notifyMetrics may be nil.
func NewPublisher(client Client, baseTopic string, timeout time.Duration, notifyMetrics *metrics.NotifyMetrics) *Publisher {
	return &Publisher{
		client:    client,
		baseTopic: strings.TrimSuffix(baseTopic, "/"),
		timeout:   timeout,
		metrics:   notifyMetrics,
	}
}

// Notify publishes result. Failures are logged and counted, never returned.
func (p *Publisher) Notify(ctx context.Context, result *planner.Result) {
	log := getLogger().WithContext(ctx)

	payload, err := json.Marshal(NewPlanMessage(result))
	if err != nil {
		log.Error("failed to marshal plan message", logger.String("plan_id", result.ID), logger.Error(err))
		return
	}

	topic := PlanTopic(p.baseTopic, result.Crop)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err = p.client.Publish(ctx, topic, payload)
	elapsed := time.Since(start)

	if p.metrics != nil {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
		}
		p.metrics.RecordDelivery(metrics.SinkMQTT, status, elapsed.Seconds())
		if err == nil {
			p.metrics.ObserveMessageSize(len(payload))
		}
	}

	if err != nil {
		log.Warn("failed to publish plan",
			logger.String("plan_id", result.ID),
			logger.String("topic", topic),
			logger.Error(err))
		return
	}
	log.Debug("published plan",
		logger.String("plan_id", result.ID),
		logger.String("topic", topic),
		logger.Int("bytes", len(payload)),
		logger.Duration("elapsed", elapsed))
}

// PlanTopic returns the topic for a crop under base. Crop names are
// lower-cased and MQTT wildcard and level characters are replaced.
func PlanTopic(base, crop string) string {
	name := strings.ToLower(strings.TrimSpace(crop))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "unknown"
	}
	return base + "/" + name
}
