// Package ports defines the capability contracts the orchestration services
// consume. Each external platform is wrapped behind one interface so the
// services never touch wire formats; adapters normalize upstream 404s to
// (nil, nil) on lookups and to success on deletes.
package ports

import (
	"context"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

// Account is the uniform view of a user account on any platform.
type Account struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Status    string
	URI       string // set by platforms that address resources by URI
}

// CreateAccountInput carries the fields shared by all account-creation calls.
type CreateAccountInput struct {
	FirstName string
	LastName  string
	Email     string
	// Password is honored by the directory platform only; empty means the
	// adapter generates one.
	Password string
}

// Directory is the identity/email platform issuing organizational accounts.
type Directory interface {
	// FindByEmail returns (nil, nil) when no account exists at the address.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, in CreateAccountInput) (*Account, error)
	// Delete is idempotent: deleting an absent account succeeds.
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]Account, error)
}

// Scheduling is the booking platform membership of which is invite-based.
type Scheduling interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// Invite sends an organization invitation and returns its URI.
	Invite(ctx context.Context, email string) (string, error)
	// Remove revokes the member's organization membership; absent member is success.
	Remove(ctx context.Context, email string) error
	LicenseInfo(ctx context.Context) (*domain.LicenseInfo, error)
}

// Video is the conferencing account provider.
type Video interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, in CreateAccountInput) (*Account, error)
	Delete(ctx context.Context, emailOrID string) error
	LicenseInfo(ctx context.Context) (*domain.LicenseInfo, error)
}

// UpdateNumberInput carries the mutable fields of a provisioned number.
type UpdateNumberInput struct {
	FriendlyName string
}

// CallFilter narrows a call-log listing.
type CallFilter struct {
	PhoneNumber string
	StartDate   string // ISO 8601; inclusive lower bound on call start
	EndDate     string
	Status      string
	Limit       int
}

// Telephony is the phone-number provisioning and call-infrastructure
// provider. Purchase, AddToMessagingService and AddToCampaign must be
// composed in that order: each upstream step depends on the previous one.
type Telephony interface {
	SearchAvailable(ctx context.Context, areaCode string, limit int) ([]domain.AvailableNumber, error)
	Purchase(ctx context.Context, number, friendlyName string) (*domain.PhoneNumber, error)
	AddToMessagingService(ctx context.Context, sid string) error
	// AddToCampaign registers the number for regulated bulk messaging and
	// reports whether registration took effect.
	AddToCampaign(ctx context.Context, sid string) (bool, error)
	// Release is idempotent: releasing an absent number succeeds.
	Release(ctx context.Context, sid string) error
	Update(ctx context.Context, sid string, in UpdateNumberInput) error
	ListAll(ctx context.Context) ([]domain.PhoneNumber, error)
	ListCalls(ctx context.Context, f CallFilter) ([]domain.CallRecord, error)
}

// CRM is the internal operations platform tracking staff and their assigned
// resources.
type CRM interface {
	ListUsers(ctx context.Context) ([]domain.CRMUser, error)
	FindByEmail(ctx context.Context, email string) (*domain.CRMUser, error)
	Create(ctx context.Context, firstName, lastName, email, role string) (*domain.CRMUser, error)
	Delete(ctx context.Context, id string) error
	// CompareWithTelephony joins telephony numbers against the CRM's
	// phone-number records, resolving which CRM user each number is linked to.
	CompareWithTelephony(ctx context.Context, numbers []domain.PhoneNumber) ([]domain.NumberCRMStatus, error)
}
