package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger verifies connectivity to one upstream platform.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	upstream Pinger
}

func NewHealthHandler(upstream Pinger) *HealthHandler {
	return &HealthHandler{upstream: upstream}
}

// Liveness reports that the process is serving requests.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness verifies upstream credentials work by pinging one platform. The
// platform APIs are this service's only dependency, so an auth failure there
// means every lifecycle operation would fail too.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.upstream != nil {
		if err := h.upstream.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
