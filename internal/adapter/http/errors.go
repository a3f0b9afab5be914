package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/usecase/delinquency"
)

// statusFor maps engine errors onto HTTP. Order matters: ErrAlreadyApproved
// and ErrPendingLoanExists wrap the broader kinds.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, loan.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, loan.ErrOverallocation):
		return http.StatusConflict, "overallocation"
	case errors.Is(err, loan.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, delinquency.ErrSweepInProgress):
		return http.StatusConflict, "sweep_in_progress"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders a use case error. Internal errors are logged and
// hidden from the caller.
func writeError(c echo.Context, err error) error {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return c.JSON(status, ErrorResponse{Error: "internal error", Code: code})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: "bad_request"})
}

// bindAndValidate binds the body (and path params) into req and validates it.
// It writes the response itself when it returns false.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    "validation_failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// ActorHeader names the caller behind a mutating request.
const ActorHeader = "Ax-Actor-Id"

func actorID(c echo.Context) string { return c.Request().Header.Get(ActorHeader) }
