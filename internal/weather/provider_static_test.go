package weather

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/irrigation"
)

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(3.5)
	p.now = func() time.Time { return time.Date(2026, 6, 1, 9, 42, 0, 0, time.UTC) }

	forecast, err := p.FetchForecast(t.Context(), testLocation)
	require.NoError(t, err)
	assert.Equal(t, "static", forecast.Provider)
	require.Len(t, forecast.Samples, 1)
	assert.Equal(t, "09:00", forecast.Samples[0].Time.Format(irrigation.DisplayTimeLayout))
	require.NotNil(t, forecast.Samples[0].Rain)
	assert.InDelta(t, 3.5, *forecast.Samples[0].Rain, 0)
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewStaticProvider(0).FetchForecast(ctx, testLocation)
	require.ErrorIs(t, err, context.Canceled)
}
