package mqtt

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
	"github.com/tphakala/irrigo/internal/privacy"
)

// ErrNotConnected is returned by Publish before Connect succeeded or after
// the connection was lost.
var ErrNotConnected = errors.NewStd("not connected to MQTT broker")

// client implements the Client interface on top of paho.
type client struct {
	config         Config
	internalClient paho.Client
	mu             sync.Mutex
	metrics        *metrics.NotifyMetrics // may be nil
}

// NewClient creates a new MQTT client with the provided configuration.
func NewClient(cfg Config, notifyMetrics *metrics.NotifyMetrics) Client {
	return &client{config: cfg, metrics: notifyMetrics}
}

// Connect resolves the broker host and then connects. paho reconnects
// automatically once the first connection has succeeded.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.config.Broker)
	if err != nil || u.Hostname() == "" {
		return c.connectError(fmt.Errorf("invalid broker URL"), "parse_broker")
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		lookupCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
		_, err := net.DefaultResolver.LookupHost(lookupCtx, host)
		cancel()
		if err != nil {
			// the resolver error repeats the host name
			reason := err.Error()
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) {
				reason = dnsErr.Err
			}
			return c.connectError(fmt.Errorf("failed to resolve broker host: %s", reason), "resolve_broker")
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = paho.NewClient(opts)

	if err := waitToken(ctx, c.internalClient.Connect(), c.config.ConnectTimeout); err != nil {
		return c.connectError(err, "connect")
	}
	return nil
}

// Publish sends payload to topic with the configured QoS and retain flag.
func (c *client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnectedLocked() {
		return ErrNotConnected
	}

	token := c.internalClient.Publish(topic, c.config.QoS, c.config.Retain, payload)
	if err := waitToken(ctx, token, c.config.PublishTimeout); err != nil {
		return errors.New(privacy.WrapError(err)).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Context("operation", "publish").
			Context("topic", topic).
			Build()
	}
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnectedLocked()
}

func (c *client) isConnectedLocked() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil {
		return
	}
	c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	c.internalClient = nil
	if c.metrics != nil {
		c.metrics.SetMQTTConnected(false)
	}
}

func (c *client) onConnect(paho.Client) {
	getLogger().Info("connected to MQTT broker", logger.String("broker", privacy.RedactURL(c.config.Broker)))
	if c.metrics != nil {
		c.metrics.SetMQTTConnected(true)
	}
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	getLogger().Warn("connection to MQTT broker lost, reconnecting",
		logger.String("broker", privacy.RedactURL(c.config.Broker)),
		logger.Error(privacy.WrapError(err)))
	if c.metrics != nil {
		c.metrics.SetMQTTConnected(false)
	}
}

func (c *client) connectError(err error, operation string) error {
	return errors.New(privacy.WrapError(err)).
		Component("mqtt").
		Category(errors.CategoryNetwork).
		Context("operation", operation).
		Context("broker", privacy.RedactURL(c.config.Broker)).
		Build()
}

// waitToken blocks until token completes, ctx ends or timeout elapses
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %v", timeout)
	}
}
