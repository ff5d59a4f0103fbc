package app

import (
	"github.com/tphakala/irrigo/internal/buildinfo"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/telemetry"
)

// Context carries state shared by the CLI commands. Settings is nil until
// Initialize has run.
type Context struct {
	ConfigFile string
	Debug      bool
	BuildInfo  buildinfo.BuildInfo
	Settings   *conf.Settings

	logger *logger.CentralLogger
}

// NewContext creates a command context for the given build.
func NewContext(info buildinfo.BuildInfo) *Context {
	return &Context{BuildInfo: info}
}

// Initialize loads settings, installs the global logger and starts error
// telemetry when it is enabled.
func (c *Context) Initialize() error {
	settings, err := conf.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	if c.Debug {
		settings.Main.Debug = true
	}
	if settings.Main.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	cl, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return err
	}
	logger.SetGlobal(cl)
	c.logger = cl
	c.Settings = settings

	return telemetry.Init(settings, c.BuildInfo)
}

// Shutdown flushes telemetry and closes the log file.
func (c *Context) Shutdown() {
	telemetry.Shutdown()
	if c.logger != nil {
		_ = c.logger.Flush()
		_ = c.logger.Close()
	}
}
