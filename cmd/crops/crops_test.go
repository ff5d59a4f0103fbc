package crops

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/conf"
)

func execute(t *testing.T, settings *conf.Settings, args ...string) (string, error) {
	t.Helper()
	ctx := app.NewContext(nil)
	ctx.Settings = settings
	cmd := Command(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCropsCommand_Default(t *testing.T) {
	t.Parallel()

	out, err := execute(t, &conf.Settings{})
	require.NoError(t, err)

	assert.Contains(t, out, "Wheat")
	assert.Contains(t, out, "15,000")
	assert.Contains(t, out, "3 crops, table version 2024.1")
}

func TestCropsCommand_CustomFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crops.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,min_water_per_area,max_water_per_area,optimal_moisture_percent\n"+
			"sweet corn,7000,9000,65\n"), 0o600))

	out, err := execute(t, &conf.Settings{}, "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweet Corn")
	assert.Contains(t, out, "9,000")
	assert.Contains(t, out, "1 crops")
}

func TestCropsCommand_MissingFile(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{Crops: conf.CropSettings{Path: filepath.Join(t.TempDir(), "none.yaml")}}
	_, err := execute(t, settings)
	require.Error(t, err)
}
