package mqtt

import (
	"time"

	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/suncalc"
)

// PlanMessage is the payload published for each finished plan
type PlanMessage struct {
	ID            string                     `json:"id"`
	Timestamp     time.Time                  `json:"timestamp"`
	Crop          string                     `json:"crop"`
	Latitude      float64                    `json:"lat"`
	Longitude     float64                    `json:"lon"`
	SoilMoisture  float64                    `json:"soil_moisture"`
	RainMm        float64                    `json:"rain_mm"`
	Decision      string                     `json:"decision"`
	Explanation   string                     `json:"explanation"`
	PerAreaVolume *float64                   `json:"per_area_volume,omitempty"`
	TotalVolume   *float64                   `json:"total_volume,omitempty"`
	NotApplicable string                     `json:"not_applicable,omitempty"`
	BudgetPercent *float64                   `json:"budget_percent,omitempty"`
	BudgetBand    string                     `json:"budget_band,omitempty"`
	Windows       *suncalc.IrrigationWindows `json:"windows,omitempty"`
}

// NewPlanMessage flattens a plan result into its published form
func NewPlanMessage(result *planner.Result) PlanMessage {
	msg := PlanMessage{
		ID:            result.ID,
		Timestamp:     result.CreatedAt,
		Crop:          result.Crop,
		Latitude:      result.Latitude,
		Longitude:     result.Longitude,
		SoilMoisture:  result.SoilMoisture,
		RainMm:        result.RainMm,
		Decision:      result.Decision.String(),
		Explanation:   result.Explanation,
		NotApplicable: string(result.NotApplicableReason),
		Windows:       result.Windows,
	}
	if result.Estimate != nil {
		perArea, total := result.Estimate.PerAreaVolume, result.Estimate.TotalVolume
		msg.PerAreaVolume = &perArea
		msg.TotalVolume = &total
	}
	if result.Budget != nil {
		pct := result.Budget.Percent
		msg.BudgetPercent = &pct
		msg.BudgetBand = string(result.Budget.Band)
	}
	return msg
}
