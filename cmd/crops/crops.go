package crops

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tphakala/irrigo/internal/app"
	cropdata "github.com/tphakala/irrigo/internal/crops"
	"github.com/tphakala/irrigo/internal/irrigation"
)

// Command creates the crops command that lists the reference table.
func Command(ctx *app.Context) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "crops",
		Short: "List crop water reference values",
		Long:  "Print the crop reference table used for water estimates, or validate a custom table with --file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = ctx.Settings.Crops.Path
			}
			table, err := load(path)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "Crop table to read (.yaml, .csv or .xlsx), overrides crops.path")

	return cmd
}

func load(path string) (*irrigation.CropTable, error) {
	if path == "" {
		return cropdata.Default()
	}
	return cropdata.Load(path)
}

func writeTable(w io.Writer, table *irrigation.CropTable) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	p.Fprintf(tw, "CROP\tMIN L/ACRE\tMAX L/ACRE\tOPTIMAL MOISTURE\n")
	for _, profile := range table.Profiles() {
		p.Fprintf(tw, "%s\t%.0f\t%.0f\t%v%%\n",
			cropdata.DisplayName(profile.Name),
			profile.MinWaterPerArea,
			profile.MaxWaterPerArea,
			profile.OptimalMoisturePercent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p.Fprintf(w, "\n%d crops, table version %s\n", table.Len(), table.Version())
	return nil
}
