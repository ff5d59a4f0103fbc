// Package telemetry provides opt-in, privacy-preserving error tracking with Sentry.
//
// Errors built through internal/errors are forwarded once Init has run with
// telemetry enabled. Events are stripped of host, user and request data
// before they leave the process.
package telemetry

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/irrigo/internal/buildinfo"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/privacy"
)

// DefaultFlushTimeout bounds the wait for buffered events at shutdown.
const DefaultFlushTimeout = 2 * time.Second

var sentryInitialized atomic.Bool

func getLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}

// Init initializes Sentry when telemetry is enabled in settings and installs
// the error reporter. It is a no-op when telemetry is disabled.
func Init(settings *conf.Settings, info buildinfo.BuildInfo) error {
	return InitWithTransport(settings, info, nil)
}

// InitWithTransport is Init with an explicit Sentry transport; nil selects
// the SDK default.
func InitWithTransport(settings *conf.Settings, info buildinfo.BuildInfo, transport sentry.Transport) error {
	if !settings.Telemetry.Enabled {
		getLogger().Debug("telemetry is disabled (opt-in required)")
		return nil
	}
	if settings.Telemetry.DSN == "" {
		return errors.Newf("telemetry enabled but no DSN configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	environment := settings.Telemetry.Environment
	if environment == "" {
		environment = "production"
	}
	version := buildinfo.UnknownValue
	if info != nil {
		version = info.GetVersion()
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Telemetry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "", // keep hostnames out of events
		Release:          fmt.Sprintf("irrigo@%s", version),
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("app", "irrigo")
		scope.SetTag("version", version)
		scope.SetTag("forecast_provider", settings.Forecast.Provider)
		scope.SetTag("advisor_provider", settings.Advisor.Provider)
		scope.SetContext("platform", map[string]any{
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
			"go_version": runtime.Version(),
		})
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	getLogger().Info("telemetry initialized",
		logger.String("environment", environment),
		logger.String("release", version))
	return nil
}

// IsEnabled reports whether Sentry has been initialized.
func IsEnabled() bool {
	return sentryInitialized.Load()
}

// Flush waits up to timeout for buffered events to be delivered.
func Flush(timeout time.Duration) bool {
	if !IsEnabled() {
		return true
	}
	return sentry.Flush(timeout)
}

// Shutdown flushes pending events and detaches the error reporter.
func Shutdown() {
	if !sentryInitialized.Swap(false) {
		return
	}
	errors.SetTelemetryReporter(nil)
	if !sentry.Flush(DefaultFlushTimeout) {
		getLogger().Warn("telemetry flush timed out", logger.Duration("timeout", DefaultFlushTimeout))
	}
}

// applyPrivacyFilters removes host, user and request data from an event and
// scrubs locations and endpoints from its messages
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.Message = privacy.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = privacy.ScrubMessage(event.Exception[i].Value)
	}

	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
