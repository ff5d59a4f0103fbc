package planner

import (
	"strings"

	"github.com/tphakala/irrigo/internal/advisor"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/weather"
)

var (
	// ErrInputIncomplete is wrapped when a required field is absent.
	ErrInputIncomplete = errors.NewStd("Please fill all required fields.")
	// ErrInvalidInput is wrapped when a field is outside its domain range.
	ErrInvalidInput = errors.NewStd("invalid input")
	// ErrBatchTooLarge is wrapped when a batch exceeds the configured size.
	ErrBatchTooLarge = errors.NewStd("too many plans in batch")
)

// User-facing failure messages.
const (
	MessageInputIncomplete    = "Please fill all required fields."
	MessageForecastFailed     = "Failed to fetch weather data."
	MessageAdviceFailed       = "Failed to fetch AI advice."
	MessagePlanFailed         = "Failed to create irrigation plan."
	messageInvalidInputPrefix = "Invalid input: "
)

// InputError lists the fields that failed range validation.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, "; ")
}

// Unwrap makes InputError match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// UserMessage returns the short message shown to people for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputIncomplete):
		return MessageInputIncomplete
	case errors.Is(err, ErrInvalidInput):
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			return messageInvalidInputPrefix + strings.Join(inputErr.Fields, "; ")
		}
		return messageInvalidInputPrefix + "out of range"
	case errors.Is(err, weather.ErrForecastUnavailable):
		return MessageForecastFailed
	case errors.Is(err, advisor.ErrAdviceUnavailable):
		return MessageAdviceFailed
	default:
		return MessagePlanFailed
	}
}
