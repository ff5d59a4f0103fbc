package irrigation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// referenceCrops mirrors the bundled crop dataset.
func referenceCrops(t *testing.T) *CropTable {
	t.Helper()
	table, err := NewCropTable("test",
		CropProfile{Name: "wheat", MinWaterPerArea: 4000, MaxWaterPerArea: 6000, OptimalMoisturePercent: 60},
		CropProfile{Name: "rice", MinWaterPerArea: 10000, MaxWaterPerArea: 15000, OptimalMoisturePercent: 70},
		CropProfile{Name: "maize", MinWaterPerArea: 6000, MaxWaterPerArea: 8000, OptimalMoisturePercent: 55},
	)
	require.NoError(t, err)
	return table
}
