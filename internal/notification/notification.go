// Package notification sends push messages for plans that call for
// irrigation. Delivery goes through shoutrrr service URLs, so any service it
// supports (Telegram, ntfy, Pushover, generic webhooks) can be targeted.
package notification

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/privacy"
)

// sender is the part of shoutrrr's router used here
type sender interface {
	Send(message string, params *stypes.Params) []error
}

// Notifier pushes irrigate decisions to the configured services. It
// implements planner.Notifier.
type Notifier struct {
	sender  sender
	metrics *metrics.NotifyMetrics
	printer *message.Printer
}

// New builds a notifier for the configured service URLs. notifyMetrics may
// be nil.
func New(settings conf.NotificationSettings, notifyMetrics *metrics.NotifyMetrics) (*Notifier, error) {
	if len(settings.URLs) == 0 {
		return nil, errors.Newf("at least one notification URL is required").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}

	router, err := shoutrrr.CreateSender(settings.URLs...)
	if err != nil {
		// shoutrrr errors echo the URL, tokens included
		return nil, errors.New(privacy.WrapError(err)).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("operation", "create_sender").
			Context("url_count", len(settings.URLs)).
			Build()
	}
	if settings.Timeout > 0 {
		router.Timeout = settings.Timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))

	return newWithSender(router, notifyMetrics), nil
}

func newWithSender(s sender, notifyMetrics *metrics.NotifyMetrics) *Notifier {
	return &Notifier{
		sender:  s,
		metrics: notifyMetrics,
		printer: message.NewPrinter(language.English),
	}
}

// Notify sends a push message when result says to irrigate. Other
// decisions are ignored. Failures are logged and counted.
func (n *Notifier) Notify(ctx context.Context, result *planner.Result) {
	if result.Decision != irrigation.Irrigate {
		return
	}
	log := getLogger().WithContext(ctx)

	params := stypes.Params{}
	params.SetTitle(n.title(result))

	start := time.Now()
	err := firstError(n.sender.Send(n.body(result), &params))
	elapsed := time.Since(start)

	if n.metrics != nil {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
		}
		n.metrics.RecordDelivery(metrics.SinkPush, status, elapsed.Seconds())
	}

	if err != nil {
		log.Warn("failed to send push notification",
			logger.String("plan_id", result.ID),
			logger.Error(privacy.WrapError(err)))
		return
	}
	log.Debug("sent push notification",
		logger.String("plan_id", result.ID),
		logger.Duration("elapsed", elapsed))
}

func (n *Notifier) title(result *planner.Result) string {
	return "Irrigate " + result.Crop
}

func (n *Notifier) body(result *planner.Result) string {
	var b strings.Builder

	if result.Estimate != nil {
		b.WriteString(n.printer.Sprintf("Water needed: %.0f L per unit area, %.0f L total\n",
			result.Estimate.PerAreaVolume, result.Estimate.TotalVolume))
	}
	b.WriteString(n.printer.Sprintf("Expected rain: %s mm\n", result.RainDisplay))
	if w := result.Windows; w != nil {
		b.WriteString(n.printer.Sprintf("Best times: %s-%s or %s-%s\n",
			w.Morning.Start.Format(clockLayout), w.Morning.End.Format(clockLayout),
			w.Evening.Start.Format(clockLayout), w.Evening.End.Format(clockLayout)))
	}
	if result.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(result.Explanation)
	}
	return strings.TrimRight(b.String(), "\n")
}

const clockLayout = "15:04"

// firstError returns the first non-nil error of a router send
func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func getLogger() logger.Logger {
	return logger.Global().Module("notification")
}
