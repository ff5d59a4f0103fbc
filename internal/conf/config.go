// Package conf loads, validates and persists irrigo settings.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/irrigo/internal/logger"
)

// MainSettings holds general application settings
type MainSettings struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Timezone string `mapstructure:"timezone" yaml:"timezone"` // display timezone for forecast series
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

// OpenWeatherSettings configures the OpenWeather forecast provider
type OpenWeatherSettings struct {
	APIKey   string `mapstructure:"apikey" yaml:"apikey"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Units    string `mapstructure:"units" yaml:"units"`
}

// YrNoSettings configures the MET Norway forecast provider
type YrNoSettings struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// ForecastSettings configures the forecast source
type ForecastSettings struct {
	Provider    string              `mapstructure:"provider" yaml:"provider"` // openweather or yrno
	Horizon     int                 `mapstructure:"horizon" yaml:"horizon"`   // number of forecast intervals aggregated
	CacheTTL    time.Duration       `mapstructure:"cachettl" yaml:"cachettl"`
	Timeout     time.Duration       `mapstructure:"timeout" yaml:"timeout"`
	OpenWeather OpenWeatherSettings `mapstructure:"openweather" yaml:"openweather"`
	YrNo        YrNoSettings        `mapstructure:"yrno" yaml:"yrno"`
}

// AdvisorSettings configures the advisory text source
type AdvisorSettings struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"` // gemini or static
	APIKey     string        `mapstructure:"apikey" yaml:"apikey"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	Model      string        `mapstructure:"model" yaml:"model"`
	Classifier string        `mapstructure:"classifier" yaml:"classifier"` // substring or token
	RateLimit  int           `mapstructure:"ratelimit" yaml:"ratelimit"`   // requests per minute, 0 disables
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	StaticText string        `mapstructure:"statictext" yaml:"statictext"`
}

// CropSettings locates the crop reference table
type CropSettings struct {
	Path string `mapstructure:"path" yaml:"path"` // .yaml, .csv or .xlsx; empty uses the built-in table
}

// PlannerSettings configures the orchestrator
type PlannerSettings struct {
	BatchConcurrency int `mapstructure:"batchconcurrency" yaml:"batchconcurrency"`
	MaxBatchSize     int `mapstructure:"maxbatchsize" yaml:"maxbatchsize"`
}

// RetrySettings configures retries of outbound requests
type RetrySettings struct {
	MaxRetries int           `mapstructure:"maxretries" yaml:"maxretries"`
	Delay      time.Duration `mapstructure:"delay" yaml:"delay"`
}

// WebServerSettings configures the HTTP API
type WebServerSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    string `mapstructure:"port" yaml:"port"`
	AutoTLS bool   `mapstructure:"autotls" yaml:"autotls"`
	Host    string `mapstructure:"host" yaml:"host"` // hostname for AutoTLS certificates
}

// SQLiteSettings configures SQLite history storage
type SQLiteSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MySQLSettings configures MySQL history storage
type MySQLSettings struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// DatastoreSettings configures plan history persistence
type DatastoreSettings struct {
	Enabled bool           `mapstructure:"enabled" yaml:"enabled"`
	Type    string         `mapstructure:"type" yaml:"type"` // sqlite or mysql
	SQLite  SQLiteSettings `mapstructure:"sqlite" yaml:"sqlite"`
	MySQL   MySQLSettings  `mapstructure:"mysql" yaml:"mysql"`
}

// TelemetrySettings configures Sentry error reporting
type TelemetrySettings struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN         string `mapstructure:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// MQTTSettings configures publishing of finished plans to an MQTT broker
type MQTTSettings struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Broker   string        `mapstructure:"broker" yaml:"broker"` // e.g. tcp://localhost:1883
	Topic    string        `mapstructure:"topic" yaml:"topic"`   // base topic, the crop is appended
	Username string        `mapstructure:"username" yaml:"username"`
	Password string        `mapstructure:"password" yaml:"password"`
	QoS      byte          `mapstructure:"qos" yaml:"qos"`
	Retain   bool          `mapstructure:"retain" yaml:"retain"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NotificationSettings configures push notifications for irrigate decisions
type NotificationSettings struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	URLs    []string      `mapstructure:"urls" yaml:"urls"` // shoutrrr service URLs
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Settings contains all configuration options
type Settings struct {
	Main         MainSettings         `mapstructure:"main" yaml:"main"`
	Logging      logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Forecast     ForecastSettings     `mapstructure:"forecast" yaml:"forecast"`
	Advisor      AdvisorSettings      `mapstructure:"advisor" yaml:"advisor"`
	Crops        CropSettings         `mapstructure:"crops" yaml:"crops"`
	Planner      PlannerSettings      `mapstructure:"planner" yaml:"planner"`
	Retry        RetrySettings        `mapstructure:"retry" yaml:"retry"`
	WebServer    WebServerSettings    `mapstructure:"webserver" yaml:"webserver"`
	Datastore    DatastoreSettings    `mapstructure:"datastore" yaml:"datastore"`
	MQTT         MQTTSettings         `mapstructure:"mqtt" yaml:"mqtt"`
	Notification NotificationSettings `mapstructure:"notification" yaml:"notification"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry" yaml:"telemetry"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// configPaths lists the directories searched for config.yaml
func configPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "irrigo"))
	}
	return append(paths, "/etc/irrigo")
}

// Load reads settings from configFile, or from config.yaml in the default
// search paths when configFile is empty. A missing config file is not an
// error: defaults, .env and environment variables still apply.
func Load(configFile string) (*Settings, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range configPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := new(Settings)
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, err
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// GetSettings returns the most recently loaded settings, or nil
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
