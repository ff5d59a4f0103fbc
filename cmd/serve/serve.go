package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tphakala/irrigo/internal/api"
	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/logger"
)

// Command creates the serve command that runs the HTTP API.
func Command(ctx *app.Context) *cobra.Command {
	var (
		port    string
		offline bool
		rainMm  float64
		advice  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the irrigation planning API",
		Long:  "Serve the REST API for irrigation plans until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				ctx.Settings.WebServer.Port = port
			}
			return run(cmd.Context(), ctx, app.Options{
				Offline:       offline,
				OfflineRainMm: rainMm,
				OfflineAdvice: advice,
			})
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port, overrides webserver.port")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use fixed rain and advice instead of the upstream APIs")
	cmd.Flags().Float64Var(&rainMm, "rain", 0, "Rain in mm reported by the offline forecast")
	cmd.Flags().StringVar(&advice, "advice", "", "Advice text returned by the offline advisor")

	return cmd
}

func run(parent context.Context, ctx *app.Context, opts app.Options) error {
	log := logger.Global().Module("serve")

	a, err := app.New(ctx.Settings, ctx.BuildInfo, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("error releasing resources", logger.Error(err))
		}
	}()

	server, err := api.New(ctx.Settings, a.Planner,
		api.WithDataStore(a.Store),
		api.WithMetrics(a.Metrics),
		api.WithBuildInfo(ctx.BuildInfo),
		api.WithProviders(a.Forecasts.ProviderName(), a.Advisor.Name()))
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(sigCtx)
}
