package weather

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
)

func TestOpenWeatherProvider_FetchForecast_Success(t *testing.T) {
	t.Parallel()

	client, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, testOpenWeatherURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, "28.6139", q.Get("lat"))
		assert.Equal(t, "77.209", q.Get("lon"))
		assert.Equal(t, "test-api-key", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		return httpmock.NewStringResponse(http.StatusOK, openWeatherForecastResponse()), nil
	})

	provider := NewOpenWeatherProvider(createTestSettings(t, "openweather").Forecast.OpenWeather, client, fastRetry())
	forecast, err := provider.FetchForecast(context.Background(), testLocation)
	require.NoError(t, err)

	assert.Equal(t, "openweather", forecast.Provider)
	require.Len(t, forecast.Samples, 6)

	require.NotNil(t, forecast.Samples[0].Rain)
	assert.InDelta(t, 0.5, *forecast.Samples[0].Rain, 1e-9)
	assert.Nil(t, forecast.Samples[2].Rain, "entry without rain block")
	assert.Nil(t, forecast.Samples[4].Rain, "rain block without 3h value")
	assert.Equal(t, int64(1780300800), forecast.Samples[0].Time.Unix())
	assert.True(t, forecast.Samples[0].Time.Before(forecast.Samples[1].Time))
}

func TestOpenWeatherProvider_FetchForecast_NoAPIKey(t *testing.T) {
	t.Parallel()

	client, mt := newMockClient(t)
	provider := NewOpenWeatherProvider(conf.OpenWeatherSettings{}, client, fastRetry())

	_, err := provider.FetchForecast(context.Background(), testLocation)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Zero(t, mt.GetTotalCallCount())
}

func TestOpenWeatherProvider_FetchForecast_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	client, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, testOpenWeatherURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "busy").
			Then(httpmock.NewStringResponder(http.StatusOK, openWeatherForecastResponse())))

	provider := NewOpenWeatherProvider(createTestSettings(t, "openweather").Forecast.OpenWeather, client, fastRetry())
	forecast, err := provider.FetchForecast(context.Background(), testLocation)
	require.NoError(t, err)
	assert.Len(t, forecast.Samples, 6)
	assert.Equal(t, 2, mt.GetTotalCallCount())
}

func TestOpenWeatherProvider_FetchForecast_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantCalls int
	}{
		{"unauthorized is not retried", http.StatusUnauthorized, 1},
		{"server error exhausts attempts", http.StatusInternalServerError, 3},
		{"rate limited exhausts attempts", http.StatusTooManyRequests, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mt := newMockClient(t)
			mt.RegisterResponder(http.MethodGet, testOpenWeatherURL, httpmock.NewStringResponder(tt.status, `{"cod":401}`))

			provider := NewOpenWeatherProvider(createTestSettings(t, "openweather").Forecast.OpenWeather, client, fastRetry())
			_, err := provider.FetchForecast(context.Background(), testLocation)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
			assert.Equal(t, tt.wantCalls, mt.GetTotalCallCount())
		})
	}
}

func TestOpenWeatherProvider_FetchForecast_InvalidJSON(t *testing.T) {
	t.Parallel()

	client, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, testOpenWeatherURL, httpmock.NewStringResponder(http.StatusOK, "{not json"))

	provider := NewOpenWeatherProvider(createTestSettings(t, "openweather").Forecast.OpenWeather, client, fastRetry())
	_, err := provider.FetchForecast(context.Background(), testLocation)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestNewOpenWeatherProvider_Defaults(t *testing.T) {
	t.Parallel()

	p := NewOpenWeatherProvider(conf.OpenWeatherSettings{APIKey: "k"}, nil, fastRetry())
	assert.Equal(t, conf.DefaultOpenWeatherURL, p.endpoint)
	assert.Equal(t, conf.DefaultOpenWeatherUnits, p.units)
	assert.Equal(t, "openweather", p.Name())
}

func TestMaskAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		keyParam string
		expected string
	}{
		{
			name:     "masks_appid",
			url:      "https://api.example.com?lat=60&appid=secret123&units=metric",
			keyParam: "appid",
			expected: "https://api.example.com?appid=%2A%2A%2AMASKED%2A%2A%2A&lat=60&units=metric",
		},
		{
			name:     "no_key_present",
			url:      "https://api.example.com?lat=60&units=metric",
			keyParam: "appid",
			expected: "https://api.example.com?lat=60&units=metric",
		},
		{
			name:     "url_without_query",
			url:      "https://api.example.com/path",
			keyParam: "appid",
			expected: "https://api.example.com/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, maskAPIKey(tt.url, tt.keyParam))
		})
	}
}
