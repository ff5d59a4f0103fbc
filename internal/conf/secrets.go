package conf

import (
	"fmt"
	"os"

	"github.com/tphakala/irrigo/internal/secrets"
)

// secretField is a credential that may also come from a file named by
// FileEnv, as with Docker and Kubernetes secrets
type secretField struct {
	Name    string
	FileEnv string
	Target  *string
}

func secretFields(s *Settings) []secretField {
	return []secretField{
		{"forecast.openweather.apikey", "OPENWEATHER_API_KEY_FILE", &s.Forecast.OpenWeather.APIKey},
		{"advisor.apikey", "GEMINI_API_KEY_FILE", &s.Advisor.APIKey},
		{"datastore.mysql.password", "IRRIGO_MYSQL_PASSWORD_FILE", &s.Datastore.MySQL.Password},
		{"mqtt.password", "IRRIGO_MQTT_PASSWORD_FILE", &s.MQTT.Password},
		{"telemetry.dsn", "SENTRY_DSN_FILE", &s.Telemetry.DSN},
	}
}

// resolveSecrets replaces credentials with the contents of their secret
// files and expands ${VAR} references in credentials and notification URLs
func resolveSecrets(s *Settings) error {
	for _, field := range secretFields(s) {
		value, err := secrets.Resolve(os.Getenv(field.FileEnv), *field.Target)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", field.Name, err)
		}
		*field.Target = value
	}

	for i, u := range s.Notification.URLs {
		expanded, err := secrets.ExpandString(u)
		if err != nil {
			return fmt.Errorf("failed to resolve notification.urls[%d]: %w", i, err)
		}
		s.Notification.URLs[i] = expanded
	}
	return nil
}
