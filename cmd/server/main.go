// Command server runs the staff lifecycle API: onboarding and offboarding
// closers across the managed platforms, payment-link reconciliation, and
// read-only call analytics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tjr-trades/staffops/internal/api"
	"github.com/tjr-trades/staffops/internal/core/service"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/calendly"
	"github.com/tjr-trades/staffops/internal/platform/ghl"
	"github.com/tjr-trades/staffops/internal/platform/google"
	"github.com/tjr-trades/staffops/internal/platform/twilio"
	"github.com/tjr-trades/staffops/internal/platform/whop"
	"github.com/tjr-trades/staffops/internal/platform/zoom"
	"github.com/tjr-trades/staffops/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger options depend on config; fall back to a default logger for
		// startup failures.
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Platform adapters ---
	directory, err := google.New(cfg.Google, log)
	if err != nil {
		log.Fatal().Err(err).Msg("directory adapter init failed")
	}
	scheduling := calendly.New(cfg.Calendly, log)
	video := zoom.New(cfg.Zoom, log)
	telephony := twilio.New(cfg.Twilio, log)
	crm := ghl.New(cfg.GHL, log)
	payments := whop.New(cfg.Whop, log)

	// --- Services ---
	svc := api.Services{
		Onboarding:  service.NewOnboarding(directory, scheduling, video, telephony, crm, cfg.EmployeeDomain, cfg.AreaCode, log),
		Offboarding: service.NewOffboarding(directory, scheduling, video, telephony, crm, cfg.EmployeeDomain, log),
		Roster:      service.NewRoster(crm, directory, scheduling, video, telephony, cfg.EmployeeDomain, cfg.AreaCode, log),
		Links: service.NewLinks(payments, cfg.EmployeeDomain,
			[]string{cfg.Whop.BlueprintProductID, cfg.Whop.DepositProductID}, log),
		Analytics: service.NewAnalytics(telephony, log),
		Readiness: scheduling,
	}

	e := api.NewRouter(svc, log)

	// --- Serve with graceful shutdown ---
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
