package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Forecast:  ForecastSettings{Provider: "openweather", Horizon: 5},
		Advisor:   AdvisorSettings{Provider: "gemini", Classifier: "substring"},
		Planner:   PlannerSettings{BatchConcurrency: 2, MaxBatchSize: 10},
		Retry:     RetrySettings{MaxRetries: 3},
		WebServer: WebServerSettings{Enabled: true, Port: "8080"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"zero horizon", func(s *Settings) { s.Forecast.Horizon = 0 }, "forecast.horizon"},
		{"bad provider", func(s *Settings) { s.Forecast.Provider = "darksky" }, "darksky"},
		{"bad advisor", func(s *Settings) { s.Advisor.Provider = "oracle" }, "oracle"},
		{"bad crop format", func(s *Settings) { s.Crops.Path = "crops.json" }, ".json"},
		{"bad port", func(s *Settings) { s.WebServer.Port = "http" }, "port"},
		{"autotls without host", func(s *Settings) { s.WebServer.AutoTLS = true }, "webserver.host"},
		{"disabled webserver skips port", func(s *Settings) { s.WebServer = WebServerSettings{Port: "x"} }, ""},
		{"bad datastore type", func(s *Settings) {
			s.Datastore = DatastoreSettings{Enabled: true, Type: "postgres"}
		}, "postgres"},
		{"mysql missing fields", func(s *Settings) {
			s.Datastore = DatastoreSettings{Enabled: true, Type: "mysql"}
		}, "datastore.mysql"},
		{"telemetry without dsn", func(s *Settings) { s.Telemetry.Enabled = true }, "telemetry.dsn"},
		{"mqtt without broker", func(s *Settings) {
			s.MQTT = MQTTSettings{Enabled: true, Topic: "irrigo/plans"}
		}, "mqtt.broker"},
		{"mqtt wildcard topic", func(s *Settings) {
			s.MQTT = MQTTSettings{Enabled: true, Broker: "tcp://localhost:1883", Topic: "irrigo/#"}
		}, "wildcards"},
		{"mqtt bad qos", func(s *Settings) {
			s.MQTT = MQTTSettings{Enabled: true, Broker: "tcp://localhost:1883", Topic: "irrigo", QoS: 3}
		}, "mqtt.qos"},
		{"notification without urls", func(s *Settings) { s.Notification.Enabled = true }, "notification.urls"},
		{"zero batch concurrency", func(s *Settings) { s.Planner.BatchConcurrency = 0 }, "batchconcurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
