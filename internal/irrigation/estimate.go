package irrigation

import "math"

// FullOffsetRainMm is the aggregated rainfall at which forecast rain fully
// offsets the computed water need.
const FullOffsetRainMm = 10.0

// WaterEstimate is a water volume recommendation in litres.
type WaterEstimate struct {
	PerAreaVolume          float64 `json:"per_area_volume"`
	TotalVolume            float64 `json:"total_volume"`
	MinReferenceVolume     float64 `json:"min_reference_volume"`
	MaxReferenceVolume     float64 `json:"max_reference_volume"`
	OptimalMoisturePercent float64 `json:"optimal_moisture_percent"`
}

// NotApplicableReason explains why no estimate could be produced.
type NotApplicableReason string

const (
	// Applicable means an estimate can be computed.
	Applicable NotApplicableReason = ""
	// UnknownCrop means the crop is missing from the reference table.
	UnknownCrop NotApplicableReason = "unknown_crop"
	// NoFarmArea means the farm area was absent or zero.
	NoFarmArea NotApplicableReason = "no_farm_area"
)

// Estimator computes water requirements against a crop table.
type Estimator struct {
	crops *CropTable
}

// NewEstimator returns an Estimator backed by crops.
func NewEstimator(crops *CropTable) *Estimator {
	return &Estimator{crops: crops}
}

// Crops returns the reference table.
func (e *Estimator) Crops() *CropTable {
	return e.crops
}

// Check reports whether an estimate can be computed for the crop and area.
func (e *Estimator) Check(cropName string, farmArea float64) NotApplicableReason {
	if _, ok := e.crops.Lookup(cropName); !ok {
		return UnknownCrop
	}
	if farmArea == 0 || math.IsNaN(farmArea) {
		return NoFarmArea
	}
	return Applicable
}

// Estimate returns the water requirement, or false when the crop is unknown
// or the farm area is zero. Check gives the reason for a false result.
//
// Inputs are not clamped: soil moisture above 100 gives negative volumes.
// Rain of FullOffsetRainMm or more zeroes the need. Per-area and total
// volumes are each rounded from the unrounded per-area figure.
func (e *Estimator) Estimate(cropName string, soilMoisturePercent, aggregatedRainMm, farmArea float64) (WaterEstimate, bool) {
	if e.Check(cropName, farmArea) != Applicable {
		return WaterEstimate{}, false
	}
	profile, _ := e.crops.Lookup(cropName)

	perArea := PerAreaNeed(profile, soilMoisturePercent, aggregatedRainMm)
	return WaterEstimate{
		PerAreaVolume:          math.Round(perArea),
		TotalVolume:            math.Round(perArea * farmArea),
		MinReferenceVolume:     profile.MinWaterPerArea,
		MaxReferenceVolume:     profile.MaxWaterPerArea,
		OptimalMoisturePercent: profile.OptimalMoisturePercent,
	}, true
}

// PerAreaNeed is the unrounded per-area water need.
func PerAreaNeed(profile CropProfile, soilMoisturePercent, aggregatedRainMm float64) float64 {
	average := (profile.MinWaterPerArea + profile.MaxWaterPerArea) / 2
	return average * SoilFactor(soilMoisturePercent) * RainFactor(aggregatedRainMm)
}

// SoilFactor is the share of water need left by current soil moisture.
func SoilFactor(soilMoisturePercent float64) float64 {
	return (100 - soilMoisturePercent) / 100
}

// RainFactor is the share of water need not covered by forecast rain.
// It never drops below zero.
func RainFactor(aggregatedRainMm float64) float64 {
	return max(0, 1-aggregatedRainMm/FullOffsetRainMm)
}
