package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes upstream and unexpected error messages through to the caller,
//     which operators rely on when a platform API misbehaves.
//   - Renders a consistent JSON envelope: {"success": false, "error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Success: false, Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSafetyGate):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNoInventory):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	}

	// Upstream platform failure outside an orchestrated stage.
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		log.Error().
			Err(err).
			Str("platform", ue.Platform).
			Str("path", c.Path()).
			Msg("upstream failure")
		return http.StatusBadGateway, ue.Error()
	}

	// Unexpected error: log it and pass the message through.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, err.Error()
}
