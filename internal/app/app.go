// Package app wires configuration into the running planning service: the
// shared HTTP client, forecast and advisory sources, crop table, history
// store, plan delivery, metrics and planner.
package app

import (
	"context"
	"fmt"

	"github.com/tphakala/irrigo/internal/advisor"
	"github.com/tphakala/irrigo/internal/buildinfo"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/crops"
	"github.com/tphakala/irrigo/internal/datastore"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/mqtt"
	"github.com/tphakala/irrigo/internal/notification"
	"github.com/tphakala/irrigo/internal/observability"
	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/suncalc"
	"github.com/tphakala/irrigo/internal/weather"
)

// Options adjust how the application is assembled.
type Options struct {
	// Offline replaces the forecast and advisory APIs with fixed values.
	Offline       bool
	OfflineRainMm float64
	OfflineAdvice string

	// SkipHistory leaves the datastore closed even when enabled in settings.
	SkipHistory bool

	// HTTPClient overrides the shared outbound client, e.g. for tests.
	HTTPClient *httpclient.Client
}

// App holds the assembled components. Close releases them.
type App struct {
	Settings  *conf.Settings
	BuildInfo buildinfo.BuildInfo
	Metrics   *observability.Metrics
	Crops     *irrigation.CropTable
	Forecasts *weather.Service
	Advisor   advisor.Source
	Store     datastore.Interface // nil when history is disabled
	Planner   *planner.Planner

	notifiers  []planner.Notifier
	mqttClient mqtt.Client // nil unless MQTT is enabled
	client     *httpclient.Client
	ownsClient bool
}

func getLogger() logger.Logger {
	return logger.Global().Module("app")
}

// New assembles the application from settings.
func New(settings *conf.Settings, info buildinfo.BuildInfo, opts Options) (*App, error) {
	a := &App{Settings: settings, BuildInfo: info, client: opts.HTTPClient}
	if a.client == nil {
		a.client = httpclient.New(&httpclient.Config{DefaultTimeout: settings.Forecast.Timeout})
		a.ownsClient = true
	}

	var err error
	if a.Metrics, err = observability.NewMetrics(); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if a.Crops, err = loadCrops(settings.Crops.Path); err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.initSources(opts); err != nil {
		_ = a.Close()
		return nil, err
	}

	if !opts.SkipHistory {
		if err := a.openStore(); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if err := a.initDelivery(); err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.initPlanner(); err != nil {
		_ = a.Close()
		return nil, err
	}

	getLogger().Info("application initialized",
		logger.String("forecast_provider", a.Forecasts.ProviderName()),
		logger.String("advisor_provider", a.Advisor.Name()),
		logger.String("crop_table", a.Crops.Version()),
		logger.Int("crops", a.Crops.Len()),
		logger.Bool("history", a.Store != nil),
		logger.Int("notifiers", len(a.notifiers)),
		logger.Bool("offline", opts.Offline))
	return a, nil
}

func loadCrops(path string) (*irrigation.CropTable, error) {
	if path == "" {
		return crops.Default()
	}
	return crops.Load(path)
}

func (a *App) initSources(opts Options) error {
	if opts.Offline {
		a.Forecasts = weather.NewServiceWithProvider(weather.NewStaticProvider(opts.OfflineRainMm), 0, a.Metrics.Forecast)
		a.Advisor = advisor.NewStatic(opts.OfflineAdvice)
		return nil
	}

	var err error
	if a.Forecasts, err = weather.NewService(a.Settings, a.client, a.Metrics.Forecast); err != nil {
		return err
	}
	if a.Advisor, err = advisor.NewSource(a.Settings, a.client, a.Metrics.Advisor); err != nil {
		return err
	}
	return nil
}

func (a *App) openStore() error {
	store := datastore.New(a.Settings)
	if store == nil {
		return nil
	}
	if err := store.Open(); err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryDatabase).
			Context("operation", "open_history").
			Context("db_type", a.Settings.Datastore.Type).
			Build()
	}
	a.Store = store
	return nil
}

// initDelivery sets up the MQTT publisher and push notifier. An unreachable
// broker is logged and skipped so planning still works; paho keeps no
// connection to retry, so publishing resumes only after a restart.
func (a *App) initDelivery() error {
	if a.Settings.MQTT.Enabled {
		client := mqtt.NewClient(mqtt.ConfigFromSettings(a.Settings), a.Metrics.Notify)
		if err := client.Connect(context.Background()); err != nil {
			getLogger().Warn("MQTT broker unavailable, plans will not be published", logger.Error(err))
		} else {
			a.mqttClient = client
			a.notifiers = append(a.notifiers,
				mqtt.NewPublisher(client, a.Settings.MQTT.Topic, a.Settings.MQTT.Timeout, a.Metrics.Notify))
		}
	}

	if a.Settings.Notification.Enabled {
		notifier, err := notification.New(a.Settings.Notification, a.Metrics.Notify)
		if err != nil {
			return err
		}
		a.notifiers = append(a.notifiers, notifier)
	}
	return nil
}

func (a *App) initPlanner() error {
	classifier, err := irrigation.NewClassifier(a.Settings.Advisor.Classifier)
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("classifier", a.Settings.Advisor.Classifier).
			Build()
	}

	opts, err := planner.OptionsFromSettings(a.Settings)
	if err != nil {
		return err
	}

	deps := planner.Deps{
		Forecasts:  a.Forecasts,
		Advisor:    a.Advisor,
		Classifier: classifier,
		Estimator:  irrigation.NewEstimator(a.Crops),
		Sun:        suncalc.NewSunCalc(opts.Location),
		Notifiers:  a.notifiers,
		Metrics:    a.Metrics.Planner,
	}
	if a.Store != nil {
		deps.Store = a.Store
	}

	a.Planner, err = planner.New(deps, opts)
	return err
}

// Close disconnects from the broker and releases the history store and the
// shared HTTP client.
func (a *App) Close() error {
	if a.mqttClient != nil {
		a.mqttClient.Disconnect()
		a.mqttClient = nil
	}

	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		a.Store = nil
	}
	if a.ownsClient && a.client != nil {
		a.client.Close()
		a.client = nil
	}
	return errors.Join(errs...)
}
