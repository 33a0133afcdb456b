// Package ghl adapts the GoHighLevel CRM API, the roster of record for
// closers and their assigned phone numbers.
package ghl

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = string(domain.PlatformGHL)
	baseURL      = "https://rest.gohighlevel.com/v1"
)

// Adapter implements ports.CRM.
type Adapter struct {
	client     *rest.Client
	locationID string
	log        zerolog.Logger
}

func New(cfg config.GHLConfig, log zerolog.Logger) *Adapter {
	return &Adapter{
		client:     rest.New(platformName, baseURL, rest.BearerAuth(cfg.APIKey), log),
		locationID: cfg.LocationID,
		log:        log.With().Str("platform", platformName).Logger(),
	}
}

type crmUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"dateAdded"`
	Roles     struct {
		Role string `json:"role"`
	} `json:"roles"`
}

func (u crmUser) toDomain() domain.CRMUser {
	return domain.CRMUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Roles.Role,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

func (a *Adapter) ListUsers(ctx context.Context) ([]domain.CRMUser, error) {
	var resp struct {
		Users []crmUser `json:"users"`
	}
	if err := a.client.GetJSON(ctx, "/users/", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]domain.CRMUser, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// FindByEmail scans the user list; the CRM has no direct email lookup.
// Returns (nil, nil) when the address is unknown.
func (a *Adapter) FindByEmail(ctx context.Context, email string) (*domain.CRMUser, error) {
	users, err := a.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (a *Adapter) Create(ctx context.Context, firstName, lastName, email, role string) (*domain.CRMUser, error) {
	if role == "" {
		role = "user"
	}
	body := map[string]any{
		"firstName":   firstName,
		"lastName":    lastName,
		"email":       email,
		"type":        "account",
		"role":        role,
		"locationIds": []string{a.locationID},
	}
	var created crmUser
	if err := a.client.PostJSON(ctx, "/users/", body, &created); err != nil {
		return nil, err
	}
	a.log.Info().Str("email", email).Str("user_id", created.ID).Msg("crm user created")
	user := created.toDomain()
	return &user, nil
}

// Delete removes the CRM user. An absent user is success.
func (a *Adapter) Delete(ctx context.Context, id string) error {
	err := a.client.Delete(ctx, "/users/"+id, nil)
	if rest.IsNotFound(err) {
		a.log.Info().Str("user_id", id).Msg("crm user already absent")
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Info().Str("user_id", id).Msg("crm user deleted")
	return nil
}

// CompareWithTelephony joins provisioned numbers against CRM user phone
// records. Matching normalizes both sides to digits so formatting differences
// between the provider and the CRM do not break the join.
func (a *Adapter) CompareWithTelephony(ctx context.Context, numbers []domain.PhoneNumber) ([]domain.NumberCRMStatus, error) {
	users, err := a.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	byPhone := make(map[string]string, len(users))
	for _, u := range users {
		if digits := normalizeNumber(u.Phone); digits != "" {
			byPhone[digits] = u.ID
		}
	}

	statuses := make([]domain.NumberCRMStatus, 0, len(numbers))
	for _, n := range numbers {
		userID, found := byPhone[normalizeNumber(n.Number)]
		status := domain.NumberCRMStatus{Number: n, InCRM: found}
		if found {
			status.LinkedUserID = userID
			status.Number.LinkedUserID = userID
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// normalizeNumber strips everything but digits and drops a leading country
// code 1 so +1 (650) 555-0100 and 6505550100 compare equal.
func normalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}
