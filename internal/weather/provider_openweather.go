package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/irrigation"
)

const openWeatherProviderName = "openweather"

// OpenWeatherForecastResponse is the part of the OpenWeather 5 day / 3 hour
// forecast response used for rain totals
type OpenWeatherForecastResponse struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Rain  *struct {
			ThreeHour *float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// OpenWeatherProvider reads three-hourly forecasts from OpenWeather
type OpenWeatherProvider struct {
	apiKey   string
	endpoint string
	units    string
	client   *httpclient.Client
	retry    RetryPolicy
}

// NewOpenWeatherProvider creates an OpenWeather provider
func NewOpenWeatherProvider(settings conf.OpenWeatherSettings, client *httpclient.Client, retry RetryPolicy) *OpenWeatherProvider {
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = conf.DefaultOpenWeatherURL
	}
	units := settings.Units
	if units == "" {
		units = conf.DefaultOpenWeatherUnits
	}
	return &OpenWeatherProvider{
		apiKey:   settings.APIKey,
		endpoint: endpoint,
		units:    units,
		client:   client,
		retry:    retry,
	}
}

// Name implements Provider
func (p *OpenWeatherProvider) Name() string {
	return openWeatherProviderName
}

// FetchForecast implements Provider
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc Location) (*Forecast, error) {
	if p.apiKey == "" {
		return nil, newWeatherError(errors.NewStd("OpenWeather API key not configured"),
			errors.CategoryConfiguration, "fetch_forecast", openWeatherProviderName)
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	query.Set("appid", p.apiKey)
	query.Set("units", p.units)

	body, err := fetchBody(ctx, p.client, p.endpoint+"?"+query.Encode(), "appid", openWeatherProviderName, p.retry)
	if err != nil {
		return nil, err
	}

	var response OpenWeatherForecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, newWeatherError(fmt.Errorf("error unmarshaling forecast data: %w", err),
			errors.CategoryFileParsing, "parse_forecast", openWeatherProviderName)
	}

	return &Forecast{
		Provider:  openWeatherProviderName,
		Location:  loc,
		Samples:   mapOpenWeatherSamples(&response),
		FetchedAt: time.Now(),
	}, nil
}

// mapOpenWeatherSamples keeps list order; entries without a rain block
// produce samples with nil rain.
func mapOpenWeatherSamples(response *OpenWeatherForecastResponse) []irrigation.RainSample {
	samples := make([]irrigation.RainSample, 0, len(response.List))
	for _, item := range response.List {
		sample := irrigation.RainSample{Time: time.Unix(item.Dt, 0)}
		if item.Rain != nil && item.Rain.ThreeHour != nil {
			rain := *item.Rain.ThreeHour
			sample.Rain = &rain
		}
		samples = append(samples, sample)
	}
	return samples
}
