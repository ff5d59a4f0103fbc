package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/irrigo/internal/datastore"
)

const msgHistoryDisabled = "Plan history is disabled."

// PlanRecordResponse is a stored plan as returned by the history endpoints
type PlanRecordResponse struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	Crop                string    `json:"crop"`
	Latitude            float64   `json:"lat"`
	Longitude           float64   `json:"lon"`
	SoilMoisture        float64   `json:"soil_moisture"`
	FarmArea            float64   `json:"farm_area"`
	RainMm              float64   `json:"rain_mm"`
	Decision            string    `json:"decision"`
	Explanation         string    `json:"explanation"`
	PerAreaVolume       *float64  `json:"per_area_volume"`
	TotalVolume         *float64  `json:"total_volume"`
	NotApplicableReason string    `json:"not_applicable_reason,omitempty"`
	BudgetPercent       *float64  `json:"budget_percent,omitempty"`
	BudgetBand          string    `json:"budget_band,omitempty"`
	ForecastProvider    string    `json:"forecast_provider"`
	AdvisorProvider     string    `json:"advisor_provider"`
}

func newPlanRecordResponse(r *datastore.PlanRecord) PlanRecordResponse {
	return PlanRecordResponse{
		ID:                  r.ID,
		CreatedAt:           r.CreatedAt,
		Crop:                r.Crop,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		SoilMoisture:        r.SoilMoisture,
		FarmArea:            r.FarmArea,
		RainMm:              r.RainMm,
		Decision:            r.Decision,
		Explanation:         r.Explanation,
		PerAreaVolume:       r.PerAreaVolume,
		TotalVolume:         r.TotalVolume,
		NotApplicableReason: r.NotApplicable,
		BudgetPercent:       r.BudgetPercent,
		BudgetBand:          r.BudgetBand,
		ForecastProvider:    r.Provider,
		AdvisorProvider:     r.AdvisorProvider,
	}
}

// listQuery holds the query parameters of GET /api/v1/plans
type listQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// ListPlans handles GET /api/v1/plans
func (c *Controller) ListPlans(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, nil, msgHistoryDisabled, http.StatusServiceUnavailable)
	}

	var q listQuery
	if err := ctx.Bind(&q); err != nil {
		return c.HandleError(ctx, err, msgInvalidQuery, http.StatusBadRequest)
	}
	if err := ctx.Validate(&q); err != nil {
		return c.HandleError(ctx, err, "limit must be between 1 and 500", http.StatusBadRequest)
	}

	records, err := c.DS.ListPlans(q.Limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list plans", statusFor(err))
	}

	resp := make([]PlanRecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, newPlanRecordResponse(&records[i]))
	}
	return ctx.JSON(http.StatusOK, resp)
}

// GetPlan handles GET /api/v1/plans/:id
func (c *Controller) GetPlan(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, nil, msgHistoryDisabled, http.StatusServiceUnavailable)
	}

	record, err := c.DS.GetPlan(ctx.Param("id"))
	if err != nil {
		code := statusFor(err)
		message := "Failed to load plan"
		if code == http.StatusNotFound {
			message = "Plan not found"
		}
		return c.HandleError(ctx, err, message, code)
	}
	return ctx.JSON(http.StatusOK, newPlanRecordResponse(record))
}

// GetPlanSummary handles GET /api/v1/plans/summary
func (c *Controller) GetPlanSummary(ctx echo.Context) error {
	if c.DS == nil {
		return c.HandleError(ctx, nil, msgHistoryDisabled, http.StatusServiceUnavailable)
	}

	summary, err := c.DS.Summary()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to summarize plans", statusFor(err))
	}
	return ctx.JSON(http.StatusOK, summary)
}
