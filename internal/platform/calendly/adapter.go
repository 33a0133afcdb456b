// Package calendly adapts the Calendly API. Membership is organization
// scoped: lookups walk the membership list, invitations go through the
// organization_invitations endpoint, and removal revokes the membership.
package calendly

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = string(domain.PlatformCalendly)
	baseURL      = "https://api.calendly.com"
)

// Adapter implements ports.Scheduling.
type Adapter struct {
	client    *rest.Client
	seatLimit int
	log       zerolog.Logger

	mu     sync.Mutex
	orgURI string // resolved once per process; the organization never changes
}

func New(cfg config.CalendlyConfig, log zerolog.Logger) *Adapter {
	return &Adapter{
		client:    rest.New(platformName, baseURL, rest.BearerAuth(cfg.APIKey), log),
		seatLimit: cfg.SeatLimit,
		log:       log.With().Str("platform", platformName).Logger(),
	}
}

type membership struct {
	URI  string `json:"uri"`
	Role string `json:"role"`
	User struct {
		URI   string `json:"uri"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// organization resolves and memoizes the caller's organization URI.
func (a *Adapter) organization(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.orgURI != "" {
		return a.orgURI, nil
	}

	var resp struct {
		Resource struct {
			CurrentOrganization string `json:"current_organization"`
		} `json:"resource"`
	}
	if err := a.client.GetJSON(ctx, "/users/me", nil, &resp); err != nil {
		return "", err
	}
	a.orgURI = resp.Resource.CurrentOrganization
	return a.orgURI, nil
}

func (a *Adapter) members(ctx context.Context) ([]membership, error) {
	org, err := a.organization(ctx)
	if err != nil {
		return nil, err
	}
	query := url.Values{"organization": {org}, "count": {"100"}}
	var resp struct {
		Collection []membership `json:"collection"`
	}
	if err := a.client.GetJSON(ctx, "/organization_memberships", query, &resp); err != nil {
		return nil, err
	}
	return resp.Collection, nil
}

// FindByEmail walks the membership list; Calendly has no direct email lookup.
func (a *Adapter) FindByEmail(ctx context.Context, email string) (*ports.Account, error) {
	members, err := a.members(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if strings.EqualFold(m.User.Email, email) {
			return &ports.Account{
				Email:  m.User.Email,
				URI:    m.User.URI,
				Status: m.Role,
			}, nil
		}
	}
	return nil, nil
}

// Invite sends an organization invitation and returns its URI.
func (a *Adapter) Invite(ctx context.Context, email string) (string, error) {
	org, err := a.organization(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]string{"email": email, "organization": org}
	var resp struct {
		Resource struct {
			URI string `json:"uri"`
		} `json:"resource"`
	}
	if err := a.client.PostJSON(ctx, "/organization_invitations", body, &resp); err != nil {
		return "", err
	}
	a.log.Info().Str("email", email).Msg("scheduling invitation sent")
	return resp.Resource.URI, nil
}

// Remove revokes the member's organization membership, releasing the seat.
// A member that is already gone is a success.
func (a *Adapter) Remove(ctx context.Context, email string) error {
	members, err := a.members(ctx)
	if err != nil {
		return err
	}

	for _, m := range members {
		if !strings.EqualFold(m.User.Email, email) {
			continue
		}
		path := strings.TrimPrefix(m.URI, baseURL)
		if err := a.client.Delete(ctx, path, nil); err != nil && !rest.IsNotFound(err) {
			return err
		}
		a.log.Info().Str("email", email).Msg("scheduling membership revoked")
		return nil
	}

	a.log.Info().Str("email", email).Msg("scheduling membership already absent")
	return nil
}

// LicenseInfo reports seat usage from the membership count against the
// configured seat ceiling; a zero ceiling reports open availability.
func (a *Adapter) LicenseInfo(ctx context.Context) (*domain.LicenseInfo, error) {
	members, err := a.members(ctx)
	if err != nil {
		return nil, err
	}
	used := len(members)
	return &domain.LicenseInfo{
		Platform:             domain.PlatformCalendly,
		TotalSeats:           a.seatLimit,
		UsedSeats:            used,
		HasAvailableLicenses: a.seatLimit == 0 || used < a.seatLimit,
	}, nil
}

// Ping verifies credentials with the cheapest authenticated call.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.client.GetJSON(ctx, "/users/me", nil, nil)
}
