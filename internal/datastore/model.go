// model.go defines the persisted plan history model
package datastore

import "time"

// PlanRecord is one stored irrigation plan
type PlanRecord struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt       time.Time `gorm:"index:idx_plan_records_created_at"`
	Crop            string    `gorm:"type:varchar(64);index:idx_plan_records_crop"`
	Latitude        float64
	Longitude       float64
	SoilMoisture    float64
	FarmArea        float64
	RainMm          float64
	Decision        string `gorm:"type:varchar(20);index:idx_plan_records_decision"`
	Explanation     string `gorm:"type:text"`
	PerAreaVolume   *float64
	TotalVolume     *float64
	NotApplicable   string `gorm:"type:varchar(20)"`
	BudgetPercent   *float64
	BudgetBand      string `gorm:"type:varchar(10)"`
	Provider        string `gorm:"type:varchar(20)"`
	AdvisorProvider string `gorm:"type:varchar(20)"`
}

// HistorySummary aggregates stored plans
type HistorySummary struct {
	Plans int64 `json:"plans"`
	// Decisions counts plans per decision string
	Decisions map[string]int64 `json:"decisions"`
	// TotalVolume is the sum of recommended total volumes in litres,
	// summed exactly and rendered with no fractional digits
	TotalVolume string `json:"total_volume"`
	// AverageRainMm is the mean aggregated rain over all plans, one decimal
	AverageRainMm string `json:"average_rain_mm"`
}
