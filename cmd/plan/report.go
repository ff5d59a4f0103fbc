package plan

import (
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tphakala/irrigo/internal/crops"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/planner"
)

// notApplicableText explains a missing estimate to the reader.
var notApplicableText = map[irrigation.NotApplicableReason]string{
	irrigation.UnknownCrop: "not available, crop is not in the reference table",
	irrigation.NoFarmArea:  "not available, farm area is missing",
}

// clock is the layout for irrigation window times
const clock = "15:04"

// writeReport prints a human readable plan. Volumes use digit grouping.
func writeReport(w io.Writer, r *planner.Result) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	p.Fprintf(tw, "Crop:\t%s\n", crops.DisplayName(r.Crop))
	p.Fprintf(tw, "Location:\t%.4f, %.4f\n", r.Latitude, r.Longitude)
	p.Fprintf(tw, "Soil moisture:\t%v%%\n", r.SoilMoisture)
	p.Fprintf(tw, "Farm area:\t%v acres\n", r.FarmArea)
	p.Fprintf(tw, "Expected rain:\t%s mm\n", r.RainDisplay)
	p.Fprintf(tw, "Decision:\t%s\n", decisionText(r.Decision))

	if r.Estimate != nil {
		p.Fprintf(tw, "Water per acre:\t%.0f L\n", r.Estimate.PerAreaVolume)
		p.Fprintf(tw, "Total water:\t%.0f L\n", r.Estimate.TotalVolume)
		p.Fprintf(tw, "Reference range:\t%.0f - %.0f L per acre\n",
			r.Estimate.MinReferenceVolume, r.Estimate.MaxReferenceVolume)
	} else {
		p.Fprintf(tw, "Water estimate:\t%s\n", notApplicableText[r.NotApplicableReason])
	}
	if r.Budget != nil {
		p.Fprintf(tw, "Water budget:\t%v%% (%s)\n", r.Budget.Percent, r.Budget.Band)
	}
	if r.MoistureStatus != nil {
		p.Fprintf(tw, "Moisture status:\t%s, optimum %v%%\n",
			r.MoistureStatus.Level, r.MoistureStatus.OptimalPercent)
	}
	if win := r.Windows; win != nil {
		p.Fprintf(tw, "Morning window:\t%s - %s\n", win.Morning.Start.Format(clock), win.Morning.End.Format(clock))
		p.Fprintf(tw, "Evening window:\t%s - %s\n", win.Evening.Start.Format(clock), win.Evening.End.Format(clock))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Forecast.Series) > 0 {
		p.Fprintf(w, "\nForecast (%s):\n", r.ForecastProvider)
		for _, point := range r.Forecast.Series {
			p.Fprintf(w, "  %s  %.2f mm\n", point.Time, point.RainMm)
		}
	}

	p.Fprintf(w, "\nAdvice (%s):\n%s\n", r.AdvisorProvider, r.Explanation)
	return nil
}

func decisionText(d irrigation.Decision) string {
	switch d {
	case irrigation.Irrigate:
		return "Irrigate"
	case irrigation.DoNotIrrigate:
		return "Do not irrigate"
	default:
		return "Unclear, read the advice below"
	}
}
