// Package advisor obtains free-text irrigation advice for a planning request.
package advisor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
)

// ErrAdviceUnavailable is wrapped by every error an advisory source returns.
var ErrAdviceUnavailable = errors.NewStd("advice unavailable")

// Source answers an advisory prompt with natural-language text. An empty
// answer is valid; the classifier treats it as unclear.
type Source interface {
	Name() string
	Advise(ctx context.Context, prompt string) (string, error)
}

func getLogger() logger.Logger {
	return logger.Global().Module("advisor")
}

// BuildPrompt renders the question sent to the advisory source. Rain is
// printed with one decimal.
func BuildPrompt(crop string, soilMoisturePercent, rainMm float64) string {
	return fmt.Sprintf("Should I irrigate today for %s? Soil moisture is %s%%, forecasted rain is %smm. Answer with yes or no and explain why.",
		crop,
		decimal.NewFromFloat(soilMoisturePercent).String(),
		FormatRain(rainMm))
}

// FormatRain renders a rain total with one decimal, rounding half away from zero.
func FormatRain(rainMm float64) string {
	return decimal.NewFromFloat(rainMm).StringFixed(1)
}

// NewSource returns the configured advisory source.
func NewSource(settings *conf.Settings, client *httpclient.Client, advisorMetrics *metrics.AdvisorMetrics) (Source, error) {
	switch settings.Advisor.Provider {
	case "gemini":
		return NewGeminiClient(GeminiConfig{
			APIKey:    settings.Advisor.APIKey,
			Endpoint:  settings.Advisor.Endpoint,
			Model:     settings.Advisor.Model,
			RateLimit: settings.Advisor.RateLimit,
			Attempts:  settings.Retry.MaxRetries,
			Delay:     settings.Retry.Delay,
		}, client, advisorMetrics), nil
	case "static":
		return NewStatic(settings.Advisor.StaticText), nil
	default:
		return nil, errors.Newf("invalid advisor provider: %s", settings.Advisor.Provider).
			Component("advisor").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Advisor.Provider).
			Build()
	}
}

// unavailable wraps err so callers can match ErrAdviceUnavailable.
func unavailable(err error, provider, operation string) error {
	return errors.New(fmt.Errorf("%w: %w", ErrAdviceUnavailable, err)).
		Component("advisor").
		Category(errors.CategoryUpstreamUnavailable).
		Context("provider", provider).
		Context("operation", operation).
		Build()
}
