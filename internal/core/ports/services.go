package ports

import (
	"context"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

// OnboardInput is the request to provision a new closer everywhere.
type OnboardInput struct {
	FirstName     string
	LastName      string
	Email         string // optional; derived from the name when empty
	PhoneNumber   string // optional; informational only
	PersonalEmail string
}

// OnboardResult is the full per-stage report of an onboarding run.
type OnboardResult struct {
	RunID          string          `json:"runId"`
	GeneratedEmail string          `json:"generatedEmail"`
	Progress       domain.Progress `json:"progress"`
	Summary        domain.Summary  `json:"summary"`
}

// OffboardResult is the full per-stage report of an offboarding run.
type OffboardResult struct {
	RunID       string          `json:"runId"`
	CloserName  string          `json:"closerName"`
	CloserEmail string          `json:"closerEmail"`
	Progress    domain.Progress `json:"progress"`
	Summary     domain.Summary  `json:"summary"`
}

// OnboardingService drives the ordered multi-platform account-creation run.
type OnboardingService interface {
	Onboard(ctx context.Context, in OnboardInput) (*OnboardResult, error)
}

// OffboardingService drives the gated multi-platform teardown run.
type OffboardingService interface {
	Offboard(ctx context.Context, id string, platforms domain.PlatformSelection) (*OffboardResult, error)
}

// RosterService provides read-only views over the live platforms.
type RosterService interface {
	ListClosers(ctx context.Context) ([]domain.Closer, error)
	PlatformAccounts(ctx context.Context, id string) (map[domain.Platform]*domain.PlatformAccountRef, error)
	Licenses(ctx context.Context) (*LicenseReport, error)
}

// LicenseReport aggregates seat availability across the licensed platforms.
type LicenseReport struct {
	CanOnboard           bool                                   `json:"canOnboard"`
	Licenses             map[domain.Platform]*domain.LicenseInfo `json:"licenses"`
	UnavailablePlatforms []domain.Platform                      `json:"unavailablePlatforms"`
}

// LinksService is the link reconciliation engine surface.
type LinksService interface {
	GroupedByCloser(ctx context.Context) ([]domain.CloserLinkGroup, error)
	GroupedByProduct(ctx context.Context) ([]domain.ProductLinkGroup, error)
	LinksForCloser(ctx context.Context, email string) ([]domain.CloserLink, error)
	DeleteForCloser(ctx context.Context, email string) (*DeleteLinksResult, error)
}

// DeleteLinksResult reports a best-effort bulk deletion.
type DeleteLinksResult struct {
	DeletedCount int               `json:"deletedCount"`
	TotalLinks   int               `json:"totalLinks"`
	Errors       []DeleteLinkError `json:"errors,omitempty"`
}

// DeleteLinkError records one plan that could not be deleted.
type DeleteLinkError struct {
	PlanID string `json:"planId"`
	Error  string `json:"error"`
}

// AnalyticsSource labels whether analytics data came from the live upstream
// or a degraded empty fallback.
type AnalyticsSource string

const (
	SourceTelephonyAPI AnalyticsSource = "telephony-api"
	SourceFallback     AnalyticsSource = "fallback"
)

// OverviewStats is the aggregate call report across all numbers.
type OverviewStats struct {
	Period         string  `json:"period"`
	TotalCalls     int     `json:"totalCalls"`
	CompletedCalls int     `json:"completedCalls"`
	InboundCalls   int     `json:"inboundCalls"`
	OutboundCalls  int     `json:"outboundCalls"`
	AvgDuration    int     `json:"avgDuration"`
	TotalMinutes   float64 `json:"totalMinutes"`
}

// SetterStats is per-number performance for setter staff.
type SetterStats struct {
	PhoneNumber    string `json:"phoneNumber"`
	FriendlyName   string `json:"friendlyName"`
	TotalCalls     int    `json:"totalCalls"`
	CompletedCalls int    `json:"completedCalls"`
	AvgDuration    int    `json:"avgDuration"`
}

// SetterReport is the aggregated setter performance view.
type SetterReport struct {
	Period  string        `json:"period"`
	Setters []SetterStats `json:"setters"`
}

// AnalyticsService aggregates read-only call statistics from the live
// telephony API; it never persists anything.
type AnalyticsService interface {
	Overview(ctx context.Context, days int) (*OverviewStats, AnalyticsSource, error)
	Calls(ctx context.Context, f CallFilter) ([]domain.CallRecord, AnalyticsSource, error)
	Setters(ctx context.Context, days int) (*SetterReport, AnalyticsSource, error)
}
