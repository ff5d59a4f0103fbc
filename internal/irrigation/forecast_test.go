package irrigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplesAt(start time.Time, rains ...*float64) []RainSample {
	out := make([]RainSample, len(rains))
	for i, r := range rains {
		out[i] = RainSample{Time: start.Add(time.Duration(i) * 3 * time.Hour), Rain: r}
	}
	return out
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		samples     []RainSample
		horizon     int
		wantTotal   float64
		wantSeries  []float64
		wantDisplay []string
	}{
		{
			name:        "uses first horizon samples",
			samples:     samplesAt(start, Float64Ptr(1), Float64Ptr(2), Float64Ptr(3), Float64Ptr(4), Float64Ptr(5), Float64Ptr(100)),
			horizon:     5,
			wantTotal:   15,
			wantSeries:  []float64{1, 2, 3, 4, 5},
			wantDisplay: []string{"00:00", "03:00", "06:00", "09:00", "12:00"},
		},
		{
			name:       "missing rain counts as zero",
			samples:    samplesAt(start, Float64Ptr(0.5), nil, Float64Ptr(1.25)),
			horizon:    5,
			wantTotal:  1.75,
			wantSeries: []float64{0.5, 0, 1.25},
		},
		{
			name:       "fewer samples than horizon",
			samples:    samplesAt(start, Float64Ptr(2)),
			horizon:    5,
			wantTotal:  2,
			wantSeries: []float64{2},
		},
		{
			name:       "empty input",
			samples:    nil,
			horizon:    5,
			wantTotal:  0,
			wantSeries: []float64{},
		},
		{
			name:       "zero horizon",
			samples:    samplesAt(start, Float64Ptr(2), Float64Ptr(3)),
			horizon:    0,
			wantTotal:  0,
			wantSeries: []float64{},
		},
		{
			name:       "negative horizon",
			samples:    samplesAt(start, Float64Ptr(2)),
			horizon:    -3,
			wantTotal:  0,
			wantSeries: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Aggregate(tt.samples, tt.horizon)

			assert.InDelta(t, tt.wantTotal, got.TotalRainMm, 1e-9)
			require.Len(t, got.Series, len(tt.wantSeries))
			for i, want := range tt.wantSeries {
				assert.InDelta(t, want, got.Series[i].RainMm, 1e-9, "series[%d]", i)
			}
			for i, want := range tt.wantDisplay {
				assert.Equal(t, want, got.Series[i].Time, "series[%d] time", i)
			}
		})
	}
}

func TestAggregate_TotalEqualsSeriesSum(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := samplesAt(start, Float64Ptr(0.1), Float64Ptr(0.2), nil, Float64Ptr(0.7), Float64Ptr(1.3), Float64Ptr(9.9))

	for horizon := range 8 {
		got := Aggregate(samples, horizon)

		sum := 0.0
		for _, p := range got.Series {
			sum += p.RainMm
		}
		assert.Equal(t, sum, got.TotalRainMm, "horizon %d", horizon)
		assert.Len(t, got.Series, min(horizon, len(samples)))
	}
}

func TestAggregator_Location(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	samples := samplesAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Float64Ptr(1), Float64Ptr(2))

	got := Aggregator{Horizon: 5, Location: loc}.Aggregate(samples)

	require.Len(t, got.Series, 2)
	assert.Equal(t, "05:30", got.Series[0].Time)
	assert.Equal(t, "08:30", got.Series[1].Time)
	assert.InDelta(t, 3.0, got.TotalRainMm, 1e-9)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	samples := samplesAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Float64Ptr(1), nil)
	_ = Aggregate(samples, 5)

	assert.Nil(t, samples[1].Rain)
	assert.InDelta(t, 1.0, *samples[0].Rain, 1e-9)
}
