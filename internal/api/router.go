package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/api/handler"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

// Services carries the wired service layer into the router.
type Services struct {
	Onboarding  ports.OnboardingService
	Offboarding ports.OffboardingService
	Roster      ports.RosterService
	Links       ports.LinksService
	Analytics   ports.AnalyticsService
	// Readiness is pinged by /health/ready; nil skips the upstream check.
	Readiness handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("staffops"))

	// --- Handlers ---
	closerHandler := handler.NewCloserHandler(svc.Onboarding, svc.Offboarding, svc.Roster)
	linksHandler := handler.NewLinksHandler(svc.Links)
	analyticsHandler := handler.NewAnalyticsHandler(svc.Analytics)
	healthHandler := handler.NewHealthHandler(svc.Readiness)

	// --- Lifecycle & roster ---
	apiGroup := e.Group("/api")
	apiGroup.GET("/closers", closerHandler.List)
	apiGroup.POST("/closers/onboard", closerHandler.Onboard)
	apiGroup.DELETE("/closers/offboard/:id", closerHandler.Offboard)
	apiGroup.GET("/closers/licenses", closerHandler.Licenses)
	apiGroup.GET("/closers/:id/platforms", closerHandler.Platforms)

	// --- Payment links ---
	apiGroup.GET("/closer-links", linksHandler.ByCloser)
	apiGroup.GET("/closer-links-by-product", linksHandler.ByProduct)
	apiGroup.GET("/closer-links/:email", linksHandler.ForCloser)
	apiGroup.DELETE("/closer-links/:email", linksHandler.DeleteForCloser)

	// --- Analytics ---
	apiGroup.GET("/analytics/overview", analyticsHandler.Overview)
	apiGroup.GET("/analytics/calls", analyticsHandler.Calls)
	apiGroup.GET("/analytics/setters", analyticsHandler.Setters)

	// --- Probes & metrics ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness)     // readiness – do upstream credentials work?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
