package notification

import (
	"strings"
	"sync"
	"testing"
	"time"

	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/observability/metrics"
	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/suncalc"
)

type sentMessage struct {
	body  string
	title string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	errs []error
}

func (f *fakeSender) Send(body string, params *stypes.Params) []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{body: body, title: (*params)["title"]})
	return f.errs
}

func irrigateResult() *planner.Result {
	morning := time.Date(2026, 6, 1, 5, 30, 0, 0, time.UTC)
	evening := time.Date(2026, 6, 1, 18, 15, 0, 0, time.UTC)
	return &planner.Result{
		ID:          "plan-1",
		Crop:        "wheat",
		RainDisplay: "4",
		Decision:    irrigation.Irrigate,
		Explanation: "Yes, irrigate at dawn.",
		Estimate:    &irrigation.WaterEstimate{PerAreaVolume: 3200, TotalVolume: 4800},
		Windows: &suncalc.IrrigationWindows{
			Date:    "2026-06-01",
			Morning: suncalc.Window{Start: morning, End: morning.Add(2 * time.Hour)},
			Evening: suncalc.Window{Start: evening, End: evening.Add(time.Hour)},
		},
	}
}

func TestNotify_Irrigate(t *testing.T) {
	t.Parallel()

	s := &fakeSender{}
	n := newWithSender(s, nil)
	n.Notify(t.Context(), irrigateResult())

	require.Len(t, s.sent, 1)
	assert.Equal(t, "Irrigate wheat", s.sent[0].title)
	body := s.sent[0].body
	assert.Contains(t, body, "Water needed: 3,200 L per unit area, 4,800 L total")
	assert.Contains(t, body, "Expected rain: 4 mm")
	assert.Contains(t, body, "Best times: 05:30-07:30 or 18:15-19:15")
	assert.True(t, strings.HasSuffix(body, "Yes, irrigate at dawn."))
}

func TestNotify_SkipsOtherDecisions(t *testing.T) {
	t.Parallel()

	for _, decision := range []irrigation.Decision{irrigation.DoNotIrrigate, irrigation.Unclear} {
		s := &fakeSender{}
		result := irrigateResult()
		result.Decision = decision
		newWithSender(s, nil).Notify(t.Context(), result)
		assert.Empty(t, s.sent, decision.String())
	}
}

func TestNotify_WithoutEstimateOrWindows(t *testing.T) {
	t.Parallel()

	s := &fakeSender{}
	result := irrigateResult()
	result.Estimate = nil
	result.Windows = nil
	result.Explanation = ""
	newWithSender(s, nil).Notify(t.Context(), result)

	require.Len(t, s.sent, 1)
	assert.Equal(t, "Expected rain: 4 mm", s.sent[0].body)
}

func TestNotify_SendFailureCounted(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewNotifyMetrics(registry)
	require.NoError(t, err)

	s := &fakeSender{errs: []error{nil, errors.NewStd("failed to send to telegram://secret@telegram")}}
	n := newWithSender(s, m)
	assert.NotPanics(t, func() { n.Notify(t.Context(), irrigateResult()) })

	expected := `
# HELP irrigo_plan_deliveries_total Total number of plan deliveries by sink and status
# TYPE irrigo_plan_deliveries_total counter
irrigo_plan_deliveries_total{sink="push",status="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "irrigo_plan_deliveries_total"))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(conf.NotificationSettings{Enabled: true}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = New(conf.NotificationSettings{Enabled: true, URLs: []string{"notaservice://token@host"}}, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "token@host")
}

func TestNew_ValidURL(t *testing.T) {
	t.Parallel()

	n, err := New(conf.NotificationSettings{
		Enabled: true,
		URLs:    []string{"logger://"},
		Timeout: time.Second,
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, n)
}
