package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/irrigo/internal/crops"
)

// CropResponse is one crop reference entry
type CropResponse struct {
	Name                   string  `json:"name"`
	DisplayName            string  `json:"display_name"`
	MinWaterPerArea        float64 `json:"min_water_per_area"`
	MaxWaterPerArea        float64 `json:"max_water_per_area"`
	OptimalMoisturePercent float64 `json:"optimal_moisture_percent"`
}

// CropsResponse lists the loaded crop table
type CropsResponse struct {
	Version string         `json:"version"`
	Crops   []CropResponse `json:"crops"`
}

// GetCrops handles GET /api/v1/crops
func (c *Controller) GetCrops(ctx echo.Context) error {
	table := c.Planner.Crops()
	profiles := table.Profiles()

	resp := CropsResponse{Version: table.Version(), Crops: make([]CropResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Crops = append(resp.Crops, CropResponse{
			Name:                   p.Name,
			DisplayName:            crops.DisplayName(p.Name),
			MinWaterPerArea:        p.MinWaterPerArea,
			MaxWaterPerArea:        p.MaxWaterPerArea,
			OptimalMoisturePercent: p.OptimalMoisturePercent,
		})
	}
	return ctx.JSON(http.StatusOK, resp)
}
