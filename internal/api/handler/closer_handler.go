package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

// response is the success envelope shared by the lifecycle endpoints.
type response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// CloserHandler serves the closer lifecycle and roster endpoints.
type CloserHandler struct {
	onboarding  ports.OnboardingService
	offboarding ports.OffboardingService
	roster      ports.RosterService
}

func NewCloserHandler(onboarding ports.OnboardingService, offboarding ports.OffboardingService, roster ports.RosterService) *CloserHandler {
	return &CloserHandler{onboarding: onboarding, offboarding: offboarding, roster: roster}
}

// List returns the roster of employee-domain closers with their numbers.
func (h *CloserHandler) List(c echo.Context) error {
	closers, err := h.roster.ListClosers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: closers})
}

type onboardRequest struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	PhoneNumber   string `json:"phoneNumber"`
	PersonalEmail string `json:"personalEmail" validate:"omitempty,email"`
}

// Onboard runs the full provisioning flow. It returns 200 with a per-stage
// report even when individual stages failed; only invalid input is a 4xx.
func (h *CloserHandler) Onboard(c echo.Context) error {
	var req onboardRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validationf("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.onboarding.Onboard(c.Request().Context(), ports.OnboardInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		PersonalEmail: req.PersonalEmail,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: result})
}

type offboardRequest struct {
	Platforms map[string]bool `json:"platforms"`
}

// Offboard tears down the selected platforms for one CRM user. Gate failures
// surface as 400/403/404 through the central error handler.
func (h *CloserHandler) Offboard(c echo.Context) error {
	var req offboardRequest
	// The selection body is optional; an empty body means all platforms.
	_ = c.Bind(&req)

	var selection domain.PlatformSelection
	if len(req.Platforms) > 0 {
		selection = make(domain.PlatformSelection, len(req.Platforms))
		for name, selected := range req.Platforms {
			selection[domain.Platform(name)] = selected
		}
	}

	result, err := h.offboarding.Offboard(c.Request().Context(), c.Param("id"), selection)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: result})
}

// Platforms reports one closer's account on each platform.
func (h *CloserHandler) Platforms(c echo.Context) error {
	refs, err := h.roster.PlatformAccounts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: refs})
}

// Licenses reports seat availability across the licensed platforms.
func (h *CloserHandler) Licenses(c echo.Context) error {
	report, err := h.roster.Licenses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: report})
}
