package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"geoshop/internal/core/domain/services"
	"geoshop/internal/pkg/errs"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

// AreaLimitDetail carries the figures of a refused order area, in square
// units of the working SRID. The client shrinks the polygon or acquires
// more coverage based on them.
type AreaLimitDetail struct {
	MaxArea      float64 `json:"max_area"`
	ActualArea   float64 `json:"actual_area"`
	ExcludedArea float64 `json:"excluded_area"`
}

// respondError maps application errors onto HTTP statuses by their sentinel.
// Unclassified errors are infrastructure failures and map to 500 without
// leaking their message.
func respondError(ctx echo.Context, err error) error {
	if limitErr := services.AsAreaLimitExceeded(err); limitErr != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: limitErr.Error(),
			Detail: AreaLimitDetail{
				MaxArea:      limitErr.MaxArea,
				ActualArea:   limitErr.RequestedArea,
				ExcludedArea: limitErr.ExcludedArea,
			},
		})
	}

	var status int
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrOperationIsForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
	default:
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "internal error",
		})
	}

	return ctx.JSON(status, ErrorResponse{
		Code:    status,
		Message: err.Error(),
	})
}

// respondBadRequest is used for malformed input caught before a use case
// runs: unparseable bodies, bad identifiers, rejected command constructors.
func respondBadRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	})
}
