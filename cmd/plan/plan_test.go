package plan

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/suncalc"
)

func newTestContext() *app.Context {
	ctx := app.NewContext(nil)
	ctx.Settings = &conf.Settings{
		Forecast: conf.ForecastSettings{Provider: "openweather", Horizon: conf.DefaultForecastHorizon, Timeout: time.Second},
		Advisor:  conf.AdvisorSettings{Provider: "static", Timeout: time.Second},
		Planner:  conf.PlannerSettings{BatchConcurrency: 1, MaxBatchSize: 1},
	}
	return ctx
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := Command(newTestContext())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestPlanCommand_Report(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--offline", "--rain", "2", "--advice", "Yes, irrigate this evening.",
		"--lat", "28.61", "--lon", "77.21", "--crop", "wheat", "--moisture", "20", "--area", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Wheat")
	assert.Contains(t, out, "2.0 mm")
	assert.Contains(t, out, "Irrigate")
	assert.Contains(t, out, "3,200 L")
	assert.Contains(t, out, "6,400 L")
	assert.Contains(t, out, "Yes, irrigate this evening.")
}

func TestPlanCommand_JSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--offline", "--advice", "No, the soil is wet.", "--json",
		"--lat", "28.61", "--lon", "77.21", "--crop", "rice", "--moisture", "80")
	require.NoError(t, err)

	var result planner.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, irrigation.DoNotIrrigate, result.Decision)
	assert.Nil(t, result.Estimate)
	assert.Equal(t, irrigation.NoFarmArea, result.NotApplicableReason)
	require.NotNil(t, result.Reference)
	assert.Equal(t, "rice", result.Reference.Name)
}

func TestPlanCommand_MissingInput(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "--offline", "--lon", "77.21", "--crop", "wheat", "--moisture", "20")
	require.Error(t, err)
	assert.Equal(t, planner.MessageInputIncomplete, err.Error())
}

func TestPlanCommand_ZeroIsAValue(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "--offline", "--lat", "0", "--lon", "0", "--crop", "maize", "--moisture", "0", "--area", "1")
	require.NoError(t, err)
}

func TestWriteReport_NotApplicable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &planner.Result{
		Crop:                "quinoa",
		RainDisplay:         "0.0",
		Decision:            irrigation.Unclear,
		NotApplicableReason: irrigation.UnknownCrop,
		AdvisorProvider:     "static",
		Explanation:         "Maybe.",
	}))

	out := buf.String()
	assert.Contains(t, out, "Quinoa")
	assert.Contains(t, out, "crop is not in the reference table")
	assert.Contains(t, out, "Unclear")
	assert.NotContains(t, out, "Forecast (")
}

func TestWriteReport_Windows(t *testing.T) {
	t.Parallel()

	dawn := time.Date(2026, 6, 1, 5, 10, 0, 0, time.UTC)
	evening := time.Date(2026, 6, 1, 18, 20, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &planner.Result{
		Crop:        "wheat",
		RainDisplay: "1.0",
		Decision:    irrigation.Irrigate,
		Windows: &suncalc.IrrigationWindows{
			Date:    "2026-06-01",
			Morning: suncalc.Window{Start: dawn, End: dawn.Add(150 * time.Minute)},
			Evening: suncalc.Window{Start: evening, End: evening.Add(90 * time.Minute)},
		},
	}))

	out := buf.String()
	assert.Regexp(t, `Morning window:\s+05:10 - 07:40`, out)
	assert.Regexp(t, `Evening window:\s+18:20 - 19:50`, out)
}
