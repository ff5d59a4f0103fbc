package plan

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/planner"
)

// flags holds the plan command line values
type flags struct {
	latitude     float64
	longitude    float64
	crop         string
	soilMoisture float64
	farmArea     float64
	offline      bool
	rainMm       float64
	advice       string
	asJSON       bool
	noHistory    bool
}

// Command creates the plan command that computes a single irrigation plan.
func Command(ctx *app.Context) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute an irrigation plan for one field",
		Long: "Fetch the rain forecast and irrigation advice for a location and print " +
			"the decision together with the estimated water need.",
		Example: "  irrigo plan --lat 28.61 --lon 77.21 --crop wheat --moisture 35 --area 2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ctx, &f)
		},
	}

	cmd.Flags().Float64Var(&f.latitude, "lat", 0, "Field latitude in degrees")
	cmd.Flags().Float64Var(&f.longitude, "lon", 0, "Field longitude in degrees")
	cmd.Flags().StringVar(&f.crop, "crop", "", "Crop name, e.g. wheat")
	cmd.Flags().Float64Var(&f.soilMoisture, "moisture", 0, "Current soil moisture percent")
	cmd.Flags().Float64Var(&f.farmArea, "area", 0, "Farm area in acres")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Use fixed rain and advice instead of the upstream APIs")
	cmd.Flags().Float64Var(&f.rainMm, "rain", 0, "Rain in mm reported by the offline forecast")
	cmd.Flags().StringVar(&f.advice, "advice", "", "Advice text returned by the offline advisor")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the plan as JSON")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record the plan in history")

	return cmd
}

func run(cmd *cobra.Command, ctx *app.Context, f *flags) error {
	a, err := app.New(ctx.Settings, ctx.BuildInfo, app.Options{
		Offline:       f.offline,
		OfflineRainMm: f.rainMm,
		OfflineAdvice: f.advice,
		SkipHistory:   f.noHistory,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	result, err := a.Planner.Plan(cmd.Context(), inputsFromFlags(cmd, f))
	if err != nil {
		if errors.Is(err, planner.ErrInputIncomplete) || errors.Is(err, planner.ErrInvalidInput) {
			return errors.NewStd(planner.UserMessage(err))
		}
		return fmt.Errorf("%s (%w)", planner.UserMessage(err), err)
	}

	return write(cmd.OutOrStdout(), result, f.asJSON)
}

// inputsFromFlags leaves unset flags nil so missing inputs are reported
// rather than planned as zero.
func inputsFromFlags(cmd *cobra.Command, f *flags) planner.Inputs {
	in := planner.Inputs{Crop: f.crop}
	set := cmd.Flags().Changed
	if set("lat") {
		in.Latitude = &f.latitude
	}
	if set("lon") {
		in.Longitude = &f.longitude
	}
	if set("moisture") {
		in.SoilMoisture = &f.soilMoisture
	}
	if set("area") {
		in.FarmArea = &f.farmArea
	}
	return in
}

func write(w io.Writer, result *planner.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeReport(w, result)
}
