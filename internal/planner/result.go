package planner

import (
	"time"

	"github.com/tphakala/irrigo/internal/datastore"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/suncalc"
)

// Result is a finished irrigation plan.
type Result struct {
	ID                  string                         `json:"id"`
	CreatedAt           time.Time                      `json:"created_at"`
	Crop                string                         `json:"crop"`
	Latitude            float64                        `json:"lat"`
	Longitude           float64                        `json:"lon"`
	SoilMoisture        float64                        `json:"soil_moisture"`
	FarmArea            float64                        `json:"farm_area"`
	RainMm              float64                        `json:"rain_mm"`
	RainDisplay         string                         `json:"rain_display"`
	Forecast            irrigation.AggregatedForecast  `json:"forecast"`
	Decision            irrigation.Decision            `json:"decision"`
	Explanation         string                         `json:"explanation"`
	Estimate            *irrigation.WaterEstimate      `json:"estimate"`
	NotApplicableReason irrigation.NotApplicableReason `json:"not_applicable_reason,omitempty"`
	Budget              *irrigation.WaterBudget        `json:"budget"`
	MoistureStatus      *irrigation.MoistureStatus     `json:"moisture_status"`
	Reference           *irrigation.CropProfile        `json:"reference,omitempty"`
	Windows             *suncalc.IrrigationWindows     `json:"windows,omitempty"`
	ForecastProvider    string                         `json:"forecast_provider"`
	AdvisorProvider     string                         `json:"advisor_provider"`
}

// Record converts the result to its history row.
func (r *Result) Record() *datastore.PlanRecord {
	rec := &datastore.PlanRecord{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		Crop:            r.Crop,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		SoilMoisture:    r.SoilMoisture,
		FarmArea:        r.FarmArea,
		RainMm:          r.RainMm,
		Decision:        r.Decision.String(),
		Explanation:     r.Explanation,
		NotApplicable:   string(r.NotApplicableReason),
		Provider:        r.ForecastProvider,
		AdvisorProvider: r.AdvisorProvider,
	}
	if r.Estimate != nil {
		perArea, total := r.Estimate.PerAreaVolume, r.Estimate.TotalVolume
		rec.PerAreaVolume = &perArea
		rec.TotalVolume = &total
	}
	if r.Budget != nil {
		pct := r.Budget.Percent
		rec.BudgetPercent = &pct
		rec.BudgetBand = string(r.Budget.Band)
	}
	return rec
}
