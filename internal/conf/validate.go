package conf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationError collects every problem found in the settings
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %v", ve.Errors)
}

// ValidateSettings checks settings sections and returns a ValidationError
// listing every problem found
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateForecastSettings(&settings.Forecast)...)
	ve.Errors = append(ve.Errors, validateAdvisorSettings(&settings.Advisor)...)
	ve.Errors = append(ve.Errors, validateCropSettings(&settings.Crops)...)
	ve.Errors = append(ve.Errors, validatePlannerSettings(&settings.Planner)...)
	ve.Errors = append(ve.Errors, validateWebServerSettings(&settings.WebServer)...)
	ve.Errors = append(ve.Errors, validateDatastoreSettings(&settings.Datastore)...)
	ve.Errors = append(ve.Errors, validateMQTTSettings(&settings.MQTT)...)

	if settings.Notification.Enabled && len(settings.Notification.URLs) == 0 {
		ve.Errors = append(ve.Errors, "notification is enabled but notification.urls is empty")
	}

	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry is enabled but telemetry.dsn is empty")
	}
	if settings.Retry.MaxRetries < 1 {
		ve.Errors = append(ve.Errors, "retry.maxretries must be at least 1")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateForecastSettings(s *ForecastSettings) []string {
	var errs []string
	switch s.Provider {
	case "openweather", "yrno":
	default:
		errs = append(errs, fmt.Sprintf("invalid forecast provider %q, must be openweather or yrno", s.Provider))
	}
	if s.Horizon < 1 {
		errs = append(errs, "forecast.horizon must be at least 1")
	}
	if s.CacheTTL < 0 {
		errs = append(errs, "forecast.cachettl must not be negative")
	}
	return errs
}

// validateAdvisorSettings doesn't require an API key: the key may arrive
// later through the environment and a missing key fails per request
func validateAdvisorSettings(s *AdvisorSettings) []string {
	var errs []string
	switch s.Provider {
	case "gemini", "static":
	default:
		errs = append(errs, fmt.Sprintf("invalid advisor provider %q, must be gemini or static", s.Provider))
	}
	switch s.Classifier {
	case "substring", "token":
	default:
		errs = append(errs, fmt.Sprintf("invalid advisor classifier %q, must be substring or token", s.Classifier))
	}
	if s.RateLimit < 0 {
		errs = append(errs, "advisor.ratelimit must not be negative")
	}
	return errs
}

func validateCropSettings(s *CropSettings) []string {
	if s.Path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml", ".csv", ".xlsx":
		return nil
	default:
		return []string{fmt.Sprintf("unsupported crop table format %q, use .yaml, .csv or .xlsx", filepath.Ext(s.Path))}
	}
}

func validatePlannerSettings(s *PlannerSettings) []string {
	var errs []string
	if s.BatchConcurrency < 1 {
		errs = append(errs, "planner.batchconcurrency must be at least 1")
	}
	if s.MaxBatchSize < 1 {
		errs = append(errs, "planner.maxbatchsize must be at least 1")
	}
	return errs
}

func validateWebServerSettings(s *WebServerSettings) []string {
	if !s.Enabled {
		return nil
	}
	var errs []string
	if port, err := strconv.Atoi(s.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid webserver port %q", s.Port))
	}
	if s.AutoTLS && s.Host == "" {
		errs = append(errs, "webserver.host is required when autotls is enabled")
	}
	return errs
}

func validateDatastoreSettings(s *DatastoreSettings) []string {
	if !s.Enabled {
		return nil
	}
	switch s.Type {
	case "sqlite":
		if s.SQLite.Path == "" {
			return []string{"datastore.sqlite.path is required"}
		}
	case "mysql":
		var errs []string
		if s.MySQL.Host == "" || s.MySQL.Database == "" || s.MySQL.Username == "" {
			errs = append(errs, "datastore.mysql requires host, username and database")
		}
		return errs
	default:
		return []string{fmt.Sprintf("invalid datastore type %q, must be sqlite or mysql", s.Type)}
	}
	return nil
}

func validateMQTTSettings(s *MQTTSettings) []string {
	if !s.Enabled {
		return nil
	}
	var errs []string
	if s.Broker == "" {
		errs = append(errs, "mqtt.broker is required when mqtt is enabled")
	}
	if s.Topic == "" || strings.ContainsAny(s.Topic, "#+") {
		errs = append(errs, fmt.Sprintf("invalid mqtt topic %q, wildcards are not allowed", s.Topic))
	}
	if s.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1 or 2")
	}
	return errs
}
