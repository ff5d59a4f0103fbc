// Package metrics provides constants used across metric definitions.
package metrics

// Status label values.
const (
	// StatusSuccess marks a completed operation.
	StatusSuccess = "success"
	// StatusError marks a failed operation.
	StatusError = "error"
	// StatusCacheHit marks a request answered from cache.
	StatusCacheHit = "cache_hit"
)

// Plan outcome label values.
const (
	// OutcomeEstimated marks a plan that produced a water estimate.
	OutcomeEstimated = "estimated"
	// OutcomeNotApplicable marks a plan without an estimate.
	OutcomeNotApplicable = "not_applicable"
	// OutcomeInvalidInput marks a plan rejected during validation.
	OutcomeInvalidInput = "invalid_input"
	// OutcomeForecastError marks a plan that failed to obtain a forecast.
	OutcomeForecastError = "forecast_error"
	// OutcomeAdviceError marks a plan that failed to obtain advice.
	OutcomeAdviceError = "advice_error"
)

// Histogram bucket configuration constants.
const (
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)
