package domain

import "strings"

// CRMUser is a staff record in the CRM, the system closers are listed in.
type CRMUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phoneNumber,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// IsEmployee reports whether the user's email is on the organization's
// employee domain. This is the offboarding safety gate: users reachable via
// the same listing endpoint but outside the domain must never be deleted.
func (u CRMUser) IsEmployee(domain string) bool {
	return u.Email != "" && strings.Contains(u.Email, "@"+domain)
}

// DisplayName prefers the CRM name field and falls back to first/last.
func (u CRMUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Closer is a roster entry: a CRM employee joined with their assigned
// telephony number.
type Closer struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Role                string `json:"role,omitempty"`
	AssignedPhoneNumber string `json:"assignedPhoneNumber,omitempty"`
	AssignedPhoneSID    string `json:"assignedPhoneSid,omitempty"`
}

// PlatformAccountRef identifies a closer's account on one platform.
type PlatformAccountRef struct {
	UserID string `json:"userId,omitempty"`
	URI    string `json:"uri,omitempty"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	Role   string `json:"role,omitempty"`
}

// LicenseInfo reports seat availability on one platform.
type LicenseInfo struct {
	Platform             Platform `json:"platform"`
	TotalSeats           int      `json:"totalSeats"`
	UsedSeats            int      `json:"usedSeats"`
	HasAvailableLicenses bool     `json:"hasAvailableLicenses"`
	Error                string   `json:"error,omitempty"`
}
