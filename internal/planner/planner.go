// Package planner sequences forecast retrieval, advisory retrieval and the
// irrigation engine into a single plan.
//
// Within one plan the forecast step runs first because the advisory prompt
// embeds the aggregated rain total. Independent plans run concurrently
// through PlanBatch.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/irrigo/internal/advisor"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/datastore"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
	"github.com/tphakala/irrigo/internal/suncalc"
	"github.com/tphakala/irrigo/internal/weather"
)

// ForecastSource supplies rain forecasts; *weather.Service implements it.
type ForecastSource interface {
	ProviderName() string
	Forecast(ctx context.Context, loc weather.Location) (*weather.Forecast, error)
}

// HistoryStore persists plans; datastore.Interface implements it.
type HistoryStore interface {
	SavePlan(record *datastore.PlanRecord) error
}

// Notifier receives every finished plan, e.g. to publish it to a broker.
// Implementations handle their own timeouts and log their own failures.
type Notifier interface {
	Notify(ctx context.Context, result *Result)
}

// SunTimes supplies irrigation windows; *suncalc.SunCalc implements it.
type SunTimes interface {
	IrrigationWindows(latitude, longitude float64, date time.Time) (suncalc.IrrigationWindows, error)
}

// Options tune the planner. Zero values fall back to defaults.
type Options struct {
	Horizon          int
	Location         *time.Location // series display timezone
	ForecastTimeout  time.Duration
	AdviceTimeout    time.Duration
	BatchConcurrency int
	MaxBatchSize     int
}

// Planner produces irrigation plans. Safe for concurrent use.
type Planner struct {
	forecasts  ForecastSource
	advice     advisor.Source
	classifier irrigation.Classifier
	estimator  *irrigation.Estimator
	store      HistoryStore
	sun        SunTimes
	notifiers  []Notifier
	metrics    *metrics.PlannerMetrics
	opts       Options
	now        func() time.Time
}

// Deps are the collaborators of a Planner. Forecasts, Advisor and
// Estimator are required.
type Deps struct {
	Forecasts  ForecastSource
	Advisor    advisor.Source
	Classifier irrigation.Classifier
	Estimator  *irrigation.Estimator
	Store      HistoryStore
	Sun        SunTimes
	Notifiers  []Notifier
	Metrics    *metrics.PlannerMetrics
}

// New creates a Planner.
func New(deps Deps, opts Options) (*Planner, error) {
	if deps.Forecasts == nil || deps.Advisor == nil || deps.Estimator == nil {
		return nil, errors.Newf("planner requires a forecast source, an advisor and an estimator").
			Component("planner").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if deps.Classifier == nil {
		deps.Classifier = irrigation.SubstringClassifier{}
	}
	if opts.Horizon == 0 {
		opts.Horizon = conf.DefaultForecastHorizon
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = conf.DefaultBatchConcurrency
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = conf.DefaultMaxBatchSize
	}

	return &Planner{
		forecasts:  deps.Forecasts,
		advice:     deps.Advisor,
		classifier: deps.Classifier,
		estimator:  deps.Estimator,
		store:      deps.Store,
		sun:        deps.Sun,
		notifiers:  deps.Notifiers,
		metrics:    deps.Metrics,
		opts:       opts,
		now:        time.Now,
	}, nil
}

// OptionsFromSettings maps configuration onto planner options.
func OptionsFromSettings(settings *conf.Settings) (Options, error) {
	loc := time.Local
	if tz := settings.Main.Timezone; tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return Options{}, errors.New(err).
				Component("planner").
				Category(errors.CategoryConfiguration).
				Context("timezone", tz).
				Build()
		}
	}
	return Options{
		Horizon:          settings.Forecast.Horizon,
		Location:         loc,
		ForecastTimeout:  settings.Forecast.Timeout,
		AdviceTimeout:    settings.Advisor.Timeout,
		BatchConcurrency: settings.Planner.BatchConcurrency,
		MaxBatchSize:     settings.Planner.MaxBatchSize,
	}, nil
}

// Crops returns the crop table used for estimates.
func (p *Planner) Crops() *irrigation.CropTable {
	return p.estimator.Crops()
}

// MaxBatchSize returns the largest batch PlanBatch accepts.
func (p *Planner) MaxBatchSize() int {
	return p.opts.MaxBatchSize
}

func getLogger() logger.Logger {
	return logger.Global().Module("planner")
}

// Plan validates in, fetches the forecast, asks for advice and estimates
// water need. Upstream failures abort the plan; an unknown crop or missing
// farm area does not.
func (p *Planner) Plan(ctx context.Context, in Inputs) (*Result, error) {
	start := p.now()
	log := getLogger().WithContext(ctx)

	result, outcome, err := p.plan(ctx, &in)

	if p.metrics != nil {
		p.metrics.RecordPlan(outcome)
		p.metrics.RecordPlanDuration(time.Since(start).Seconds())
		if err == nil {
			p.metrics.RecordDecision(result.Decision.String())
			p.metrics.SetLastRain(result.RainMm)
		}
	}

	if err != nil {
		log.Warn("plan failed",
			logger.String("crop", in.Crop),
			logger.String("outcome", outcome),
			logger.Error(err))
		return nil, err
	}

	log.Info("plan created",
		logger.String("plan_id", result.ID),
		logger.String("crop", result.Crop),
		logger.Float64("rain_mm", result.RainMm),
		logger.String("decision", result.Decision.String()),
		logger.String("outcome", outcome),
		logger.Duration("elapsed", time.Since(start)))

	p.persist(ctx, result)
	for _, n := range p.notifiers {
		n.Notify(ctx, result)
	}
	return result, nil
}

func (p *Planner) plan(ctx context.Context, in *Inputs) (*Result, string, error) {
	if err := in.Validate(); err != nil {
		return nil, metrics.OutcomeInvalidInput, err
	}
	loc := weather.Location{Latitude: *in.Latitude, Longitude: *in.Longitude}
	moisture := *in.SoilMoisture
	area := in.Area()

	forecast, err := p.fetchForecast(ctx, loc)
	if err != nil {
		return nil, metrics.OutcomeForecastError, err
	}
	aggregated := irrigation.Aggregator{Horizon: p.opts.Horizon, Location: p.opts.Location}.Aggregate(forecast.Samples)

	text, err := p.fetchAdvice(ctx, advisor.BuildPrompt(in.Crop, moisture, aggregated.TotalRainMm))
	if err != nil {
		return nil, metrics.OutcomeAdviceError, err
	}
	advice := p.classifier.Classify(text)

	result := &Result{
		ID:               uuid.NewString(),
		CreatedAt:        p.now().UTC(),
		Crop:             in.Crop,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		SoilMoisture:     moisture,
		FarmArea:         area,
		RainMm:           aggregated.TotalRainMm,
		RainDisplay:      advisor.FormatRain(aggregated.TotalRainMm),
		Forecast:         aggregated,
		Decision:         advice.Decision,
		Explanation:      advice.Explanation,
		ForecastProvider: forecast.Provider,
		AdvisorProvider:  p.advice.Name(),
	}

	if p.sun != nil {
		windows, err := p.sun.IrrigationWindows(loc.Latitude, loc.Longitude, result.CreatedAt)
		if err != nil {
			getLogger().WithContext(ctx).Debug("no irrigation windows for location", logger.Error(err))
		} else {
			result.Windows = &windows
		}
	}

	if profile, ok := p.estimator.Crops().Lookup(in.Crop); ok {
		result.Reference = &profile
		status := irrigation.CompareMoisture(profile, moisture)
		result.MoistureStatus = &status
	}

	estimate, ok := p.estimator.Estimate(in.Crop, moisture, aggregated.TotalRainMm, area)
	if !ok {
		result.NotApplicableReason = p.estimator.Check(in.Crop, area)
		return result, metrics.OutcomeNotApplicable, nil
	}
	result.Estimate = &estimate
	budget := irrigation.Budget(estimate)
	result.Budget = &budget
	return result, metrics.OutcomeEstimated, nil
}

func (p *Planner) fetchForecast(ctx context.Context, loc weather.Location) (*weather.Forecast, error) {
	if p.opts.ForecastTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.ForecastTimeout)
		defer cancel()
	}

	forecast, err := p.forecasts.Forecast(ctx, loc)
	if err != nil {
		if !errors.Is(err, weather.ErrForecastUnavailable) {
			err = fmt.Errorf("%w: %w", weather.ErrForecastUnavailable, err)
		}
		return nil, errors.New(err).
			Component("planner").
			Category(errors.CategoryUpstreamUnavailable).
			Context("operation", "fetch_forecast").
			Context("provider", p.forecasts.ProviderName()).
			Build()
	}
	return forecast, nil
}

func (p *Planner) fetchAdvice(ctx context.Context, prompt string) (string, error) {
	if p.opts.AdviceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.AdviceTimeout)
		defer cancel()
	}

	text, err := p.advice.Advise(ctx, prompt)
	if err != nil {
		if !errors.Is(err, advisor.ErrAdviceUnavailable) {
			err = fmt.Errorf("%w: %w", advisor.ErrAdviceUnavailable, err)
		}
		return "", errors.New(err).
			Component("planner").
			Category(errors.CategoryUpstreamUnavailable).
			Context("operation", "fetch_advice").
			Context("provider", p.advice.Name()).
			Build()
	}
	return text, nil
}

// persist stores the plan; failures are logged only.
func (p *Planner) persist(ctx context.Context, result *Result) {
	if p.store == nil {
		return
	}
	if err := p.store.SavePlan(result.Record()); err != nil {
		getLogger().WithContext(ctx).Error("failed to save plan history",
			logger.String("plan_id", result.ID),
			logger.Error(err))
	}
}

// BatchItem is the outcome of one plan in a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// PlanBatch runs Plan for every input concurrently, at most
// BatchConcurrency at a time. A failing plan does not cancel the others.
// Items are returned in input order.
func (p *Planner) PlanBatch(ctx context.Context, inputs []Inputs) ([]BatchItem, error) {
	if len(inputs) > p.opts.MaxBatchSize {
		return nil, errors.New(fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(inputs), p.opts.MaxBatchSize)).
			Component("planner").
			Category(errors.CategoryLimit).
			Build()
	}
	if p.metrics != nil {
		p.metrics.RecordBatch(len(inputs))
	}

	items := make([]BatchItem, len(inputs))
	var g errgroup.Group
	g.SetLimit(p.opts.BatchConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			result, err := p.Plan(ctx, in)
			items[i] = BatchItem{Index: i, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}
