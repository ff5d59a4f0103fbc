package weather

import (
	"context"
	"time"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
)

const staticProviderName = "static"

// StaticProvider reports a fixed rain amount as a single sample. It backs
// offline planning where no forecast API is reachable.
type StaticProvider struct {
	rainMm float64
	now    func() time.Time
}

// NewStaticProvider creates a provider that always forecasts rainMm.
func NewStaticProvider(rainMm float64) *StaticProvider {
	return &StaticProvider{rainMm: rainMm, now: time.Now}
}

// Name implements Provider
func (p *StaticProvider) Name() string {
	return staticProviderName
}

// FetchForecast implements Provider
func (p *StaticProvider) FetchForecast(ctx context.Context, loc Location) (*Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, newWeatherError(err, errors.CategoryCancellation, "fetch_forecast", staticProviderName)
	}
	now := p.now()
	return &Forecast{
		Provider:  staticProviderName,
		Location:  loc,
		Samples:   []irrigation.RainSample{{Time: now.Truncate(time.Hour), Rain: irrigation.Float64Ptr(p.rainMm)}},
		FetchedAt: now,
	}, nil
}
