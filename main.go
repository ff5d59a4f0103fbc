package main

import (
	"fmt"
	"os"

	"github.com/tphakala/irrigo/cmd"
	"github.com/tphakala/irrigo/internal/app"
	"github.com/tphakala/irrigo/internal/buildinfo"
)

// buildDate and version are set at build time with ldflags.
var (
	buildDate string
	version   string
)

func main() {
	ctx := app.NewContext(buildinfo.NewContext(version, buildDate))
	defer ctx.Shutdown()

	rootCmd := cmd.RootCommand(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Shutdown()
		os.Exit(1)
	}
}
