package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tjr-trades/staffops/internal/core/ports"
)

// analyticsResponse labels every analytics payload with its source so callers
// can distinguish live aggregation from the degraded empty fallback.
type analyticsResponse struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data"`
	Source  ports.AnalyticsSource `json:"source"`
}

// AnalyticsHandler serves the read-only call statistics endpoints.
type AnalyticsHandler struct {
	analytics ports.AnalyticsService
}

func NewAnalyticsHandler(analytics ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview returns aggregate call statistics for the requested period.
func (h *AnalyticsHandler) Overview(c echo.Context) error {
	stats, source, err := h.analytics.Overview(c.Request().Context(), daysParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analyticsResponse{Success: true, Data: stats, Source: source})
}

// Calls returns the filtered raw call log.
func (h *AnalyticsHandler) Calls(c echo.Context) error {
	filter := ports.CallFilter{
		PhoneNumber: c.QueryParam("phoneNumber"),
		StartDate:   c.QueryParam("startDate"),
		EndDate:     c.QueryParam("endDate"),
		Status:      c.QueryParam("status"),
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}

	calls, source, err := h.analytics.Calls(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analyticsResponse{Success: true, Data: calls, Source: source})
}

// Setters returns per-number performance for the requested period.
func (h *AnalyticsHandler) Setters(c echo.Context) error {
	report, source, err := h.analytics.Setters(c.Request().Context(), daysParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analyticsResponse{Success: true, Data: report, Source: source})
}

func daysParam(c echo.Context) int {
	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil {
		return 0
	}
	return days
}
