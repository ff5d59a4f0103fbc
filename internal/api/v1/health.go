package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/irrigo/internal/buildinfo"
)

// HealthResponse is returned by GET /api/v1/health
type HealthResponse struct {
	Status           string  `json:"status"`
	Version          string  `json:"version"`
	BuildDate        string  `json:"build_date"`
	ForecastProvider string  `json:"forecast_provider,omitempty"`
	AdvisorProvider  string  `json:"advisor_provider,omitempty"`
	CropTable        string  `json:"crop_table"`
	Crops            int     `json:"crops"`
	HistoryEnabled   bool    `json:"history_enabled"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Timestamp        string  `json:"timestamp"`
}

// HealthCheck handles GET /api/v1/health
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	crops := c.Planner.Crops()

	resp := HealthResponse{
		Status:           "healthy",
		Version:          buildinfo.UnknownValue,
		BuildDate:        buildinfo.UnknownValue,
		ForecastProvider: c.ForecastProvider,
		AdvisorProvider:  c.AdvisorProvider,
		CropTable:        crops.Version(),
		Crops:            crops.Len(),
		HistoryEnabled:   c.DS != nil,
		Uptime:           uptime.Truncate(time.Second).String(),
		UptimeSeconds:    uptime.Seconds(),
		Timestamp:        time.Now().Format(time.RFC3339),
	}
	if c.BuildInfo != nil {
		resp.Version = c.BuildInfo.GetVersion()
		resp.BuildDate = c.BuildInfo.GetBuildDate()
	}

	return ctx.JSON(http.StatusOK, resp)
}
