package irrigation

import "time"

// DisplayTimeLayout renders series timestamps as hour:minute.
const DisplayTimeLayout = "15:04"

// RainSample is one forecast interval. Rain is nil when the source reported
// no rainfall figure for the interval.
type RainSample struct {
	Time time.Time
	Rain *float64 // millimetres
}

// SeriesPoint is one chart entry of an aggregated forecast.
type SeriesPoint struct {
	Time   string  `json:"time"`
	RainMm float64 `json:"rain_mm"`
}

// AggregatedForecast is the near-term rain total and its per-interval series.
// TotalRainMm always equals the in-order sum of Series[*].RainMm.
type AggregatedForecast struct {
	TotalRainMm float64       `json:"total_rain_mm"`
	Series      []SeriesPoint `json:"series"`
}

// Aggregator reduces rain samples over a fixed horizon.
type Aggregator struct {
	// Horizon is the number of leading samples used.
	Horizon int
	// Location sets the display timezone of the series; nil keeps each
	// sample's own location.
	Location *time.Location
}

// Aggregate sums the first Horizon samples. Missing rain counts as 0.
// Fewer samples than Horizon, or none at all, is not an error.
func (a Aggregator) Aggregate(samples []RainSample) AggregatedForecast {
	n := min(max(a.Horizon, 0), len(samples))

	out := AggregatedForecast{Series: make([]SeriesPoint, 0, n)}
	for _, s := range samples[:n] {
		rain := 0.0
		if s.Rain != nil {
			rain = *s.Rain
		}

		ts := s.Time
		if a.Location != nil {
			ts = ts.In(a.Location)
		}

		out.Series = append(out.Series, SeriesPoint{Time: ts.Format(DisplayTimeLayout), RainMm: rain})
		out.TotalRainMm += rain
	}
	return out
}

// Aggregate is shorthand for Aggregator{Horizon: horizon}.Aggregate(samples).
func Aggregate(samples []RainSample, horizon int) AggregatedForecast {
	return Aggregator{Horizon: horizon}.Aggregate(samples)
}

// Float64Ptr returns a pointer to v, for building samples with rain values.
func Float64Ptr(v float64) *float64 {
	return &v
}
