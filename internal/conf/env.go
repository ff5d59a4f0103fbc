package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces generic overrides: IRRIGO_FORECAST_HORIZON=8
const envPrefix = "IRRIGO"

// envBinding maps a well known environment variable to a config key
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

// getEnvBindings lists variables that don't follow the IRRIGO_ prefix scheme
func getEnvBindings() []envBinding {
	return []envBinding{
		{"forecast.openweather.apikey", "OPENWEATHER_API_KEY", nil},
		{"advisor.apikey", "GEMINI_API_KEY", nil},
		{"forecast.horizon", "IRRIGO_FORECAST_HORIZON", validateEnvPositiveInt},
		{"webserver.port", "IRRIGO_PORT", validateEnvPort},
		{"datastore.mysql.password", "IRRIGO_MYSQL_PASSWORD", nil},
		{"mqtt.password", "IRRIGO_MQTT_PASSWORD", nil},
		{"telemetry.dsn", "SENTRY_DSN", nil},
	}
}

// bindEnvVars enables IRRIGO_* overrides and binds the explicit variables
func bindEnvVars(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var problems []string
	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			problems = append(problems, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if value := os.Getenv(binding.EnvVar); value != "" {
			if err := binding.Validate(value); err != nil {
				problems = append(problems, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, value, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535")
	}
	return nil
}
