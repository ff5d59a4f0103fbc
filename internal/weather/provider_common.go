package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/httpclient"
	"github.com/tphakala/irrigo/internal/logger"
)

const (
	RetryDelay  = 2 * time.Second
	MaxAttempts = 3

	maxBodyPreviewSize = 200 // Maximum characters to show in error logs
)

// RetryPolicy controls how many times a provider request is attempted.
type RetryPolicy struct {
	Attempts int           // total attempts, including the first
	Delay    time.Duration // constant delay between attempts
}

// DefaultRetryPolicy returns the production retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: MaxAttempts, Delay: RetryDelay}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	retries := max(p.Attempts-1, 0)
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(retries)),
		ctx,
	)
}

// newWeatherError creates a standardized weather error with common fields
func newWeatherError(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.New(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Build()
}

// newWeatherErrorWithRetries creates a weather error that includes retry information
func newWeatherErrorWithRetries(err error, category errors.ErrorCategory, operation, provider string, attempts int) error {
	return errors.New(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Context("max_attempts", fmt.Sprintf("%d", attempts)).
		Build()
}

// fetchBody GETs rawURL with retries. Server errors, 429 and transport
// failures are retried; other non-200 responses fail immediately.
func fetchBody(ctx context.Context, client *httpclient.Client, rawURL, keyParam, provider string, policy RetryPolicy) ([]byte, error) {
	log := getLogger().With(logger.String("provider", provider), logger.String("url", maskAPIKey(rawURL, keyParam)))

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := client.Get(ctx, rawURL)
		if err != nil {
			log.Warn("forecast request failed", logger.Int("attempt", attempt), logger.Error(err))
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
			log.Warn("forecast provider returned retryable status",
				logger.Int("attempt", attempt),
				logger.Int("status_code", resp.StatusCode))
			return fmt.Errorf("received non-200 response: %d", resp.StatusCode)
		default:
			log.Error("forecast provider rejected request",
				logger.Int("status_code", resp.StatusCode),
				logger.String("body_preview", truncate(string(data), maxBodyPreviewSize)))
			return backoff.Permanent(fmt.Errorf("received non-200 response: %d", resp.StatusCode))
		}
	}

	if err := backoff.Retry(operation, policy.backOff(ctx)); err != nil {
		return nil, newWeatherErrorWithRetries(err, errors.CategoryNetwork, "fetch_forecast", provider, policy.Attempts)
	}
	return body, nil
}

// maskAPIKey replaces the value of keyParam in rawURL for logging
func maskAPIKey(rawURL, keyParam string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has(keyParam) {
		return rawURL
	}
	q.Set(keyParam, "***MASKED***")
	u.RawQuery = q.Encode()
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
