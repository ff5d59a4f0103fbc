package irrigation

import "math"

// BudgetBand buckets a water budget percentage.
type BudgetBand string

const (
	BudgetLow      BudgetBand = "low"
	BudgetModerate BudgetBand = "moderate"
	BudgetHigh     BudgetBand = "high"
)

// WaterBudget relates the per-area need to the crop's maximum reference volume.
type WaterBudget struct {
	Percent float64    `json:"percent"`
	Band    BudgetBand `json:"band"`
}

// Budget returns the share of the maximum reference volume the estimate
// uses, capped at 100 percent. A zero maximum gives a zero budget.
func Budget(est WaterEstimate) WaterBudget {
	pct := 0.0
	if est.MaxReferenceVolume != 0 {
		pct = min(100, math.Round(est.PerAreaVolume/est.MaxReferenceVolume*100))
	}

	band := BudgetHigh
	switch {
	case pct < 50:
		band = BudgetLow
	case pct < 85:
		band = BudgetModerate
	}
	return WaterBudget{Percent: pct, Band: band}
}

// MoistureLevel places soil moisture relative to the crop optimum.
type MoistureLevel string

const (
	BelowOptimal MoistureLevel = "below_optimal"
	Optimal      MoistureLevel = "optimal"
	AboveOptimal MoistureLevel = "above_optimal"
)

// MoistureStatus compares current soil moisture with the crop optimum.
// Deficit is positive when the soil is drier than optimal.
type MoistureStatus struct {
	Level          MoistureLevel `json:"level"`
	CurrentPercent float64       `json:"current_percent"`
	OptimalPercent float64       `json:"optimal_percent"`
	Deficit        float64       `json:"deficit"`
}

// CompareMoisture classifies soil moisture against the profile optimum.
func CompareMoisture(profile CropProfile, soilMoisturePercent float64) MoistureStatus {
	s := MoistureStatus{
		CurrentPercent: soilMoisturePercent,
		OptimalPercent: profile.OptimalMoisturePercent,
		Deficit:        profile.OptimalMoisturePercent - soilMoisturePercent,
	}
	switch {
	case s.Deficit > 0:
		s.Level = BelowOptimal
	case s.Deficit < 0:
		s.Level = AboveOptimal
	default:
		s.Level = Optimal
	}
	return s
}
