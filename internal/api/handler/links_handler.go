package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

// LinksHandler serves the payment-link reconciliation endpoints.
type LinksHandler struct {
	links ports.LinksService
}

func NewLinksHandler(links ports.LinksService) *LinksHandler {
	return &LinksHandler{links: links}
}

// ByCloser returns the flat per-closer grouping across every product.
func (h *LinksHandler) ByCloser(c echo.Context) error {
	groups, err := h.links.GroupedByCloser(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: groups})
}

// ByProduct returns the two-level product → closer grouping.
func (h *LinksHandler) ByProduct(c echo.Context) error {
	groups, err := h.links.GroupedByProduct(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: groups})
}

// ForCloser returns one closer's links from the priority products.
func (h *LinksHandler) ForCloser(c echo.Context) error {
	email, err := closerEmailParam(c)
	if err != nil {
		return err
	}
	links, err := h.links.LinksForCloser(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: links})
}

// DeleteForCloser deletes every link attributed to the closer and reports
// per-plan failures in the body; partial failure is still a 200.
func (h *LinksHandler) DeleteForCloser(c echo.Context) error {
	email, err := closerEmailParam(c)
	if err != nil {
		return err
	}
	result, err := h.links.DeleteForCloser(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: result})
}

func closerEmailParam(c echo.Context) (string, error) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.Validationf("a closer email address is required")
	}
	return email, nil
}
