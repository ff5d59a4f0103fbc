package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/buildinfo"
)

// Command creates a new cobra.Command to print build information.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the irrigo version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version, buildDate := buildinfo.UnknownValue, buildinfo.UnknownValue
			if ctx.BuildInfo != nil {
				version, buildDate = ctx.BuildInfo.GetVersion(), ctx.BuildInfo.GetBuildDate()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "irrigo %s (built %s, %s %s/%s)\n",
				version, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
