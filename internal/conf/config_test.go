package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config.yaml into a temp dir and returns its path
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(writeConfig(t, "main:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", settings.Main.Name)
	assert.Equal(t, "openweather", settings.Forecast.Provider)
	assert.Equal(t, DefaultForecastHorizon, settings.Forecast.Horizon)
	assert.Equal(t, DefaultForecastCacheTTL, settings.Forecast.CacheTTL)
	assert.Equal(t, DefaultOpenWeatherURL, settings.Forecast.OpenWeather.Endpoint)
	assert.Equal(t, "substring", settings.Advisor.Classifier)
	assert.Equal(t, DefaultGeminiModel, settings.Advisor.Model)
	assert.Equal(t, DefaultBatchConcurrency, settings.Planner.BatchConcurrency)
	assert.Equal(t, DefaultMaxRetries, settings.Retry.MaxRetries)
	assert.False(t, settings.MQTT.Enabled)
	assert.Equal(t, DefaultMQTTTopic, settings.MQTT.Topic)
	assert.Equal(t, byte(1), settings.MQTT.QoS)
	assert.True(t, settings.MQTT.Retain)
	assert.Equal(t, DefaultNotifyTimeout, settings.Notification.Timeout)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.Same(t, settings, GetSettings())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
forecast:
  provider: yrno
  horizon: 8
  cachettl: 5m
advisor:
  classifier: token
  ratelimit: 10
crops:
  path: crops.csv
datastore:
  enabled: true
  type: sqlite
  sqlite:
    path: /tmp/history.db
mqtt:
  enabled: true
  broker: tcp://broker.local:1883
  topic: farm/plans
notification:
  enabled: true
  urls:
    - telegram://token@telegram?chats=@farm
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yrno", settings.Forecast.Provider)
	assert.Equal(t, 8, settings.Forecast.Horizon)
	assert.Equal(t, 5*time.Minute, settings.Forecast.CacheTTL)
	assert.Equal(t, "token", settings.Advisor.Classifier)
	assert.Equal(t, 10, settings.Advisor.RateLimit)
	assert.Equal(t, "crops.csv", settings.Crops.Path)
	assert.True(t, settings.Datastore.Enabled)
	assert.Equal(t, "/tmp/history.db", settings.Datastore.SQLite.Path)
	assert.True(t, settings.MQTT.Enabled)
	assert.Equal(t, "farm/plans", settings.MQTT.Topic)
	assert.Equal(t, []string{"telegram://token@telegram?chats=@farm"}, settings.Notification.URLs)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("IRRIGO_FORECAST_HORIZON", "3")
	t.Setenv("IRRIGO_ADVISOR_CLASSIFIER", "token")

	settings, err := Load(writeConfig(t, "forecast:\n  horizon: 5\n"))
	require.NoError(t, err)

	assert.Equal(t, "ow-key", settings.Forecast.OpenWeather.APIKey)
	assert.Equal(t, "gm-key", settings.Advisor.APIKey)
	assert.Equal(t, 3, settings.Forecast.Horizon)
	assert.Equal(t, "token", settings.Advisor.Classifier)
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("IRRIGO_FORECAST_HORIZON", "zero")

	_, err := Load(writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IRRIGO_FORECAST_HORIZON")
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "forecast:\n  provider: darksky\nadvisor:\n  classifier: regex\n"))
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
	assert.Contains(t, ve.Error(), "darksky")
	assert.Contains(t, ve.Error(), "regex")
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "forecast: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSaveYAMLConfig_RoundTrip(t *testing.T) {
	settings, err := Load(writeConfig(t, "forecast:\n  horizon: 7\n"))
	require.NoError(t, err)

	settings.Advisor.Classifier = "token"
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveYAMLConfig(path, settings))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Forecast.Horizon)
	assert.Equal(t, "token", reloaded.Advisor.Classifier)
	assert.Equal(t, settings.Forecast.CacheTTL, reloaded.Forecast.CacheTTL)
}

func TestLoad_SecretFilesAndReferences(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "gemini_key")
	require.NoError(t, os.WriteFile(keyFile, []byte("file-key\n"), 0o600))
	t.Setenv("GEMINI_API_KEY_FILE", keyFile)
	t.Setenv("IRRIGO_TEST_BOT_TOKEN", "bot123")

	settings, err := Load(writeConfig(t, `
advisor:
  apikey: inline-key
notification:
  enabled: true
  urls:
    - telegram://${IRRIGO_TEST_BOT_TOKEN}@telegram?chats=@farm
`))
	require.NoError(t, err)

	assert.Equal(t, "file-key", settings.Advisor.APIKey)
	assert.Equal(t, []string{"telegram://bot123@telegram?chats=@farm"}, settings.Notification.URLs)
}

func TestLoad_MissingSecretReference(t *testing.T) {
	_, err := Load(writeConfig(t, "mqtt:\n  password: ${IRRIGO_TEST_UNSET_PASSWORD}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.password")
	assert.Contains(t, err.Error(), "IRRIGO_TEST_UNSET_PASSWORD")
}
