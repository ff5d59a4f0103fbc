package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/irrigo/internal/planner"
	"github.com/tphakala/irrigo/internal/privacy"
)

// Request body messages.
const (
	msgInvalidBody  = "Invalid request body"
	msgInvalidQuery = "Invalid query parameters"
)

// CreatePlan handles POST /api/v1/plan
func (c *Controller) CreatePlan(ctx echo.Context) error {
	var in planner.Inputs
	if err := ctx.Bind(&in); err != nil {
		return c.HandleError(ctx, err, msgInvalidBody, http.StatusBadRequest)
	}

	result, err := c.Planner.Plan(ctx.Request().Context(), in)
	if err != nil {
		return c.HandleError(ctx, err, planner.UserMessage(err), statusFor(err))
	}
	return ctx.JSON(http.StatusOK, result)
}

// BatchRequest is the body of POST /api/v1/plans/batch
type BatchRequest struct {
	Requests []planner.Inputs `json:"requests" validate:"required,min=1"`
}

// BatchItemResponse carries either a plan or the reason it failed
type BatchItemResponse struct {
	Index   int             `json:"index"`
	Result  *planner.Result `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    int             `json:"code,omitempty"`
}

// BatchResponse is returned by POST /api/v1/plans/batch
type BatchResponse struct {
	Items     []BatchItemResponse `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// CreatePlanBatch handles POST /api/v1/plans/batch. Item failures are
// reported per item; the response is 200 unless the batch itself is rejected.
func (c *Controller) CreatePlanBatch(ctx echo.Context) error {
	var req BatchRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, msgInvalidBody, http.StatusBadRequest)
	}
	if err := ctx.Validate(&req); err != nil {
		return c.HandleError(ctx, err, "At least one plan request is required.", http.StatusBadRequest)
	}

	items, err := c.Planner.PlanBatch(ctx.Request().Context(), req.Requests)
	if err != nil {
		return c.HandleError(ctx, err, planner.UserMessage(err), statusFor(err))
	}

	resp := BatchResponse{Items: make([]BatchItemResponse, len(items))}
	for i, item := range items {
		out := BatchItemResponse{Index: item.Index, Result: item.Result}
		if item.Err != nil {
			out.Error = privacy.ScrubMessage(item.Err.Error())
			out.Message = planner.UserMessage(item.Err)
			out.Code = statusFor(item.Err)
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = out
	}
	return ctx.JSON(http.StatusOK, resp)
}
