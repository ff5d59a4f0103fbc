package advisor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability/metrics"
)

const geminiProviderName = "gemini"

// GeminiConfig configures the Gemini generateContent client.
type GeminiConfig struct {
	APIKey    string
	Endpoint  string // API base, e.g. https://generativelanguage.googleapis.com/v1beta
	Model     string
	RateLimit int // requests per minute, 0 disables limiting
	Attempts  int
	Delay     time.Duration
}

// GeminiClient asks a Gemini model for irrigation advice.
type GeminiClient struct {
	cfg     GeminiConfig
	client  *httpclient.Client
	limiter *rate.Limiter
	metrics *metrics.AdvisorMetrics
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// NewGeminiClient creates a Gemini client. advisorMetrics may be nil.
func NewGeminiClient(cfg GeminiConfig, client *httpclient.Client, advisorMetrics *metrics.AdvisorMetrics) *GeminiClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = conf.DefaultGeminiEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = conf.DefaultGeminiModel
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	g := &GeminiClient{cfg: cfg, client: client, metrics: advisorMetrics}
	if cfg.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}
	return g
}

// Name implements Source.
func (g *GeminiClient) Name() string { return geminiProviderName }

// Advise implements Source. A response without candidate text yields "".
func (g *GeminiClient) Advise(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.advise(ctx, prompt)

	if g.metrics != nil {
		g.metrics.RecordRequestDuration(time.Since(start).Seconds())
		if err != nil {
			g.metrics.RecordRequest(metrics.StatusError)
		} else {
			g.metrics.RecordRequest(metrics.StatusSuccess)
		}
	}
	if err != nil {
		getLogger().Error("advisory request failed", logger.String("model", g.cfg.Model), logger.Error(err))
		return "", unavailable(err, geminiProviderName, "generate_content")
	}
	return text, nil
}

func (g *GeminiClient) advise(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errors.Newf("Gemini API key not configured").
			Component("advisor").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if g.limiter != nil {
		if g.limiter.Tokens() < 1 && g.metrics != nil {
			g.metrics.RecordRateLimited()
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return "", errors.New(err).
				Component("advisor").
				Category(errors.CategoryLimit).
				Context("operation", "rate_limiter_wait").
				Build()
		}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.Endpoint, "/"), url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))
	payload := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := g.client.Post(ctx, endpoint, "", payload)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		data, err := httpclient.ReadBody(resp)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			getLogger().Warn("advisory request will be retried",
				logger.Int("attempt", attempt),
				logger.Int("status_code", resp.StatusCode))
			return apiError(resp.StatusCode, data)
		default:
			return backoff.Permanent(apiError(resp.StatusCode, data))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.cfg.Delay), uint64(g.cfg.Attempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}

	return candidateText(body)
}

// candidateText extracts candidates[0].content.parts[0].text.
func candidateText(body []byte) (string, error) {
	obj, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return "", errors.New(err).
			Component("advisor").
			Category(errors.CategoryFileParsing).
			Context("operation", "parse_response").
			Build()
	}

	candidates, err := obj.GetObjectArray("candidates")
	if err != nil || len(candidates) == 0 {
		getLogger().Warn("advisory response has no candidates")
		return "", nil
	}
	parts, err := candidates[0].GetObjectArray("content", "parts")
	if err != nil || len(parts) == 0 {
		return "", nil
	}
	text, err := parts[0].GetString("text")
	if err != nil {
		return "", nil
	}
	return text, nil
}

// apiError builds an error from a non-200 response, using the API's own
// error message when the body carries one.
func apiError(status int, body []byte) error {
	msg := http.StatusText(status)
	if obj, err := jason.NewObjectFromBytes(body); err == nil {
		if apiMsg, err := obj.GetString("error", "message"); err == nil && apiMsg != "" {
			msg = apiMsg
		}
	}
	return errors.Newf("advisory API returned %d: %s", status, msg).
		Component("advisor").
		Category(errors.CategoryHTTP).
		Context("status_code", status).
		Build()
}
