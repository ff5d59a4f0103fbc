package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults shared with the packages that consume them
const (
	DefaultForecastHorizon   = 5
	DefaultOpenWeatherURL    = "https://api.openweathermap.org/data/2.5/forecast"
	DefaultYrNoURL           = "https://api.met.no/weatherapi/locationforecast/2.0/compact"
	DefaultGeminiEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultBatchConcurrency  = 4
	DefaultMaxBatchSize      = 20
	DefaultAdvisorRateLimit  = 30
	DefaultSQLitePath        = "irrigo.db"
	DefaultWebServerPort     = "8080"
	DefaultForecastCacheTTL  = 10 * time.Minute
	DefaultUpstreamTimeout   = 15 * time.Second
	DefaultRetryDelay        = 2 * time.Second
	DefaultMaxRetries        = 3
	DefaultClassifier        = "substring"
	DefaultForecastProvider  = "openweather"
	DefaultAdvisorProvider   = "gemini"
	DefaultDatastoreType     = "sqlite"
	DefaultOpenWeatherUnits  = "metric"
	DefaultStaticAdviceReply = ""
	DefaultMQTTTopic         = "irrigo/plans"
	DefaultMQTTTimeout       = 10 * time.Second
	DefaultNotifyTimeout     = 10 * time.Second
)

// setDefaultConfig registers defaults for every key so env bindings and
// Unmarshal see the full key set
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("main.name", "irrigo")
	v.SetDefault("main.timezone", "Local")
	v.SetDefault("main.debug", false)

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/irrigo.log")
	v.SetDefault("logging.file_output.level", "info")

	v.SetDefault("forecast.provider", DefaultForecastProvider)
	v.SetDefault("forecast.horizon", DefaultForecastHorizon)
	v.SetDefault("forecast.cachettl", DefaultForecastCacheTTL)
	v.SetDefault("forecast.timeout", DefaultUpstreamTimeout)
	v.SetDefault("forecast.openweather.apikey", "")
	v.SetDefault("forecast.openweather.endpoint", DefaultOpenWeatherURL)
	v.SetDefault("forecast.openweather.units", DefaultOpenWeatherUnits)
	v.SetDefault("forecast.yrno.endpoint", DefaultYrNoURL)

	v.SetDefault("advisor.provider", DefaultAdvisorProvider)
	v.SetDefault("advisor.apikey", "")
	v.SetDefault("advisor.endpoint", DefaultGeminiEndpoint)
	v.SetDefault("advisor.model", DefaultGeminiModel)
	v.SetDefault("advisor.classifier", DefaultClassifier)
	v.SetDefault("advisor.ratelimit", DefaultAdvisorRateLimit)
	v.SetDefault("advisor.timeout", DefaultUpstreamTimeout)
	v.SetDefault("advisor.statictext", DefaultStaticAdviceReply)

	v.SetDefault("crops.path", "")

	v.SetDefault("planner.batchconcurrency", DefaultBatchConcurrency)
	v.SetDefault("planner.maxbatchsize", DefaultMaxBatchSize)

	v.SetDefault("retry.maxretries", DefaultMaxRetries)
	v.SetDefault("retry.delay", DefaultRetryDelay)

	v.SetDefault("webserver.enabled", true)
	v.SetDefault("webserver.port", DefaultWebServerPort)
	v.SetDefault("webserver.autotls", false)
	v.SetDefault("webserver.host", "")

	v.SetDefault("datastore.enabled", false)
	v.SetDefault("datastore.type", DefaultDatastoreType)
	v.SetDefault("datastore.sqlite.path", DefaultSQLitePath)
	v.SetDefault("datastore.mysql.host", "localhost")
	v.SetDefault("datastore.mysql.port", "3306")
	v.SetDefault("datastore.mysql.username", "")
	v.SetDefault("datastore.mysql.password", "")
	v.SetDefault("datastore.mysql.database", "irrigo")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", DefaultMQTTTopic)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retain", true)
	v.SetDefault("mqtt.timeout", DefaultMQTTTimeout)

	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.urls", []string{})
	v.SetDefault("notification.timeout", DefaultNotifyTimeout)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dsn", "")
	v.SetDefault("telemetry.environment", "production")
}
