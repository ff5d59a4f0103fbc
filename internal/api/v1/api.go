// internal/api/v1/api.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mw "github.com/tphakala/irrigo/internal/api/middleware"
	"github.com/tphakala/irrigo/internal/buildinfo"
	"github.com/tphakala/irrigo/internal/datastore"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/privacy"
)

// Planner is the planning service behind the API; *planner.Planner implements it.
type Planner interface {
	Plan(ctx context.Context, in planner.Inputs) (*planner.Result, error)
	PlanBatch(ctx context.Context, inputs []planner.Inputs) ([]planner.BatchItem, error)
	Crops() *irrigation.CropTable
	MaxBatchSize() int
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	Planner   Planner
	DS        datastore.Interface // nil when history is disabled
	BuildInfo buildinfo.BuildInfo

	// Provider names reported by the health endpoint
	ForecastProvider string
	AdvisorProvider  string

	startTime time.Time
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithDataStore enables the history endpoints.
func WithDataStore(ds datastore.Interface) Option {
	return func(c *Controller) {
		c.DS = ds
	}
}

// WithBuildInfo sets the version reported by the health endpoint.
func WithBuildInfo(info buildinfo.BuildInfo) Option {
	return func(c *Controller) {
		c.BuildInfo = info
	}
}

// WithProviders sets the upstream provider names reported by the health endpoint.
func WithProviders(forecast, advisor string) Option {
	return func(c *Controller) {
		c.ForecastProvider = forecast
		c.AdvisorProvider = advisor
	}
}

// requestValidator adapts validator/v10 to echo.Validator.
type requestValidator struct {
	validate *validator.Validate
}

// Validate implements echo.Validator.
func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func getLogger() logger.Logger {
	return logger.Global().Module("api")
}

// New creates the API controller and registers its routes under /api/v1.
func New(e *echo.Echo, p Planner, opts ...Option) (*Controller, error) {
	if p == nil {
		return nil, errors.Newf("api controller requires a planner").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Echo:      e,
		Planner:   p,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if e.Validator == nil {
		e.Validator = &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
	}

	c.Group = e.Group("/api/v1")
	c.initRoutes()
	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)
	c.Group.GET("/crops", c.GetCrops)

	c.Group.POST("/plan", c.CreatePlan)
	c.Group.POST("/plans/batch", c.CreatePlanBatch)

	// Static segments take precedence over :id in Echo's router
	c.Group.GET("/plans", c.ListPlans)
	c.Group.GET("/plans/summary", c.GetPlanSummary)
	c.Group.GET("/plans/:id", c.GetPlan)
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // request ID, or a fresh UUID
}

// NewErrorResponse creates a new API error response. Upstream URLs, keys and
// coordinates are scrubbed from the error text.
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	errorStr := message
	if err != nil {
		errorStr = privacy.ScrubMessage(err.Error())
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code, mw.RequestID(ctx))

	log := getLogger().WithContext(ctx.Request().Context())
	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Warn("API error", fields...)
	}

	return ctx.JSON(code, errorResp)
}

// statusFor maps a planning or history error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrInputIncomplete), errors.Is(err, planner.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, datastore.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
