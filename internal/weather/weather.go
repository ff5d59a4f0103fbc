// Package weather retrieves rain forecasts for irrigation planning.
//
// Providers translate an upstream forecast API into ordered rain samples.
// Service selects the configured provider, caches forecasts per location
// and records fetch metrics.
package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
)

// ErrForecastUnavailable is wrapped by every error returned from Service.Forecast.
var ErrForecastUnavailable = errors.NewStd("forecast unavailable")

// Provider represents a rain forecast provider
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) (*Forecast, error)
}

// Location is the point a forecast is requested for
type Location struct {
	Latitude  float64
	Longitude float64
}

// cacheKey rounds to three decimals, roughly 100 metres.
func (l Location) cacheKey(provider string) string {
	return fmt.Sprintf("%s:%.3f,%.3f", provider, l.Latitude, l.Longitude)
}

// Forecast is an ordered sequence of rain samples from one provider
type Forecast struct {
	Provider  string
	Location  Location
	Samples   []irrigation.RainSample
	FetchedAt time.Time
}

// Service handles forecast retrieval
type Service struct {
	provider Provider
	cache    *cache.Cache
	metrics  *metrics.ForecastMetrics
}

// NewService creates a forecast service with the configured provider
func NewService(settings *conf.Settings, client *httpclient.Client, forecastMetrics *metrics.ForecastMetrics) (*Service, error) {
	policy := RetryPolicy{Attempts: settings.Retry.MaxRetries, Delay: settings.Retry.Delay}

	var provider Provider
	switch settings.Forecast.Provider {
	case "yrno":
		provider = NewYrNoProvider(settings.Forecast.YrNo, client, policy)
	case "openweather":
		provider = NewOpenWeatherProvider(settings.Forecast.OpenWeather, client, policy)
	default:
		return nil, errors.New(fmt.Errorf("invalid forecast provider: %s", settings.Forecast.Provider)).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Forecast.Provider).
			Build()
	}

	return NewServiceWithProvider(provider, settings.Forecast.CacheTTL, forecastMetrics), nil
}

// NewServiceWithProvider creates a service around an explicit provider.
// A cacheTTL of zero disables caching; metrics may be nil.
func NewServiceWithProvider(provider Provider, cacheTTL time.Duration, forecastMetrics *metrics.ForecastMetrics) *Service {
	s := &Service{provider: provider, metrics: forecastMetrics}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, cacheTTL*2)
	}
	return s
}

// ProviderName returns the name of the active provider
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Forecast returns the rain forecast for loc, from cache when fresh.
// Errors wrap ErrForecastUnavailable.
func (s *Service) Forecast(ctx context.Context, loc Location) (*Forecast, error) {
	name := s.provider.Name()
	key := loc.cacheKey(name)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			getLogger().Debug("serving cached forecast", logger.String("provider", name), logger.String("key", key))
			return cached.(*Forecast), nil
		}
	}

	start := time.Now()
	forecast, err := s.provider.FetchForecast(ctx, loc)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordFetchDuration(name, elapsed.Seconds())
		if err != nil {
			s.metrics.RecordFetch(name, metrics.StatusError)
			s.metrics.RecordFetchError(name, errorType(err))
		} else {
			s.metrics.RecordFetch(name, metrics.StatusSuccess)
			s.metrics.RecordSamples(name, len(forecast.Samples))
		}
	}

	if err != nil {
		getLogger().Error("failed to fetch forecast from provider",
			logger.String("provider", name),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return nil, errors.New(fmt.Errorf("%w: %w", ErrForecastUnavailable, err)).
			Component("weather").
			Category(errors.CategoryUpstreamUnavailable).
			Context("operation", "fetch_forecast").
			Context("provider", name).
			Build()
	}

	getLogger().Info("fetched forecast",
		logger.String("provider", name),
		logger.Int("samples", len(forecast.Samples)),
		logger.Duration("elapsed", elapsed))

	if s.cache != nil {
		s.cache.Set(key, forecast, cache.DefaultExpiration)
	}
	return forecast, nil
}

// errorType maps an error to a low-cardinality metric label.
func errorType(err error) string {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return enhanced.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
