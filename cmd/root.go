// Package cmd assembles the irrigo command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/irrigo/cmd/crops"
	"github.com/tphakala/irrigo/cmd/plan"
	"github.com/tphakala/irrigo/cmd/serve"
	"github.com/tphakala/irrigo/cmd/version"
	"github.com/tphakala/irrigo/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "irrigo",
		Short:        "Irrigation decision engine",
		Long:         "irrigo combines rain forecasts, soil moisture and crop water needs into an irrigation plan.",
		SilenceUsage: true,
	}

	setupFlags(rootCmd, ctx)

	versionCmd := version.Command(ctx)

	subcommands := []*cobra.Command{
		serve.Command(ctx),
		plan.Command(ctx),
		crops.Command(ctx),
		versionCmd,
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version needs no configuration
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return ctx.Initialize()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, ctx *app.Context) {
	rootCmd.PersistentFlags().StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to config file (default: config.yaml in ., ~/.config/irrigo or /etc/irrigo)")
	rootCmd.PersistentFlags().BoolVarP(&ctx.Debug, "debug", "d", false, "Enable debug output")
}
