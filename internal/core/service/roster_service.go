package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/cache"
)

const inventoryTTL = 5 * time.Minute

// Roster provides read-only views over the live platforms: the closer list,
// one closer's accounts everywhere, and seat availability. The CRM is the
// roster of record; the telephony inventory is snapshotted briefly because
// the closer list and the number join both read it on every page load.
type Roster struct {
	crm        ports.CRM
	directory  ports.Directory
	scheduling ports.Scheduling
	video      ports.Video

	inventory      *cache.Snapshot[[]domain.PhoneNumber]
	employeeDomain string
	areaCode       string
	log            zerolog.Logger
}

func NewRoster(
	crm ports.CRM,
	directory ports.Directory,
	scheduling ports.Scheduling,
	video ports.Video,
	telephony ports.Telephony,
	employeeDomain, areaCode string,
	log zerolog.Logger,
) *Roster {
	return &Roster{
		crm:            crm,
		directory:      directory,
		scheduling:     scheduling,
		video:          video,
		inventory:      cache.New(inventoryTTL, telephony.ListAll),
		employeeDomain: employeeDomain,
		areaCode:       areaCode,
		log:            log.With().Str("service", "roster").Logger(),
	}
}

// linkedNumbers joins the cached inventory against the CRM, restricted to
// the configured area-code pool; numbers outside the pool are never
// attributed to closers.
func (r *Roster) linkedNumbers(ctx context.Context) ([]domain.NumberCRMStatus, error) {
	numbers, err := r.inventory.Get(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]domain.PhoneNumber, 0, len(numbers))
	for _, n := range numbers {
		if n.InAreaCode(r.areaCode) {
			pool = append(pool, n)
		}
	}
	return r.crm.CompareWithTelephony(ctx, pool)
}

// ListClosers returns the employee-domain CRM users joined with their
// assigned telephony numbers. A telephony outage degrades to a roster
// without number assignments instead of failing the listing.
func (r *Roster) ListClosers(ctx context.Context) ([]domain.Closer, error) {
	users, err := r.crm.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	numberByUser := map[string]domain.PhoneNumber{}
	if statuses, err := r.linkedNumbers(ctx); err != nil {
		r.log.Warn().Err(err).Msg("number join unavailable, roster returned without numbers")
	} else {
		for _, st := range statuses {
			if st.LinkedUserID != "" {
				numberByUser[st.LinkedUserID] = st.Number
			}
		}
	}

	closers := make([]domain.Closer, 0, len(users))
	for _, u := range users {
		if !u.IsEmployee(r.employeeDomain) {
			continue
		}
		closer := domain.Closer{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Name:      u.DisplayName(),
			Email:     u.Email,
			Role:      u.Role,
		}
		if n, ok := numberByUser[u.ID]; ok {
			closer.AssignedPhoneNumber = n.Number
			closer.AssignedPhoneSID = n.SID
		}
		closers = append(closers, closer)
	}
	return closers, nil
}

// PlatformAccounts resolves one closer's account on each platform by email.
// A platform that errors contributes an entry with the error status so the
// caller sees a partial picture instead of nothing.
func (r *Roster) PlatformAccounts(ctx context.Context, id string) (map[domain.Platform]*domain.PlatformAccountRef, error) {
	users, err := r.crm.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var target *domain.CRMUser
	for _, u := range users {
		if u.ID == id {
			found := u
			target = &found
			break
		}
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}

	refs := map[domain.Platform]*domain.PlatformAccountRef{
		domain.PlatformGHL: {
			UserID: target.ID,
			Email:  target.Email,
			Name:   target.DisplayName(),
			Role:   target.Role,
		},
	}

	lookups := []struct {
		platform domain.Platform
		find     func(context.Context, string) (*ports.Account, error)
	}{
		{domain.PlatformGoogleWorkspace, r.directory.FindByEmail},
		{domain.PlatformCalendly, r.scheduling.FindByEmail},
		{domain.PlatformZoom, r.video.FindByEmail},
	}
	for _, l := range lookups {
		account, err := l.find(ctx, target.Email)
		if err != nil {
			r.log.Warn().Err(err).Str("platform", string(l.platform)).Msg("account lookup failed")
			refs[l.platform] = &domain.PlatformAccountRef{Email: target.Email, Status: "unknown"}
			continue
		}
		if account == nil {
			continue
		}
		refs[l.platform] = &domain.PlatformAccountRef{
			UserID: account.ID,
			URI:    account.URI,
			Email:  account.Email,
			Status: account.Status,
		}
	}

	if statuses, err := r.linkedNumbers(ctx); err == nil {
		for _, st := range statuses {
			if st.LinkedUserID == target.ID {
				refs[domain.PlatformTwilio] = &domain.PlatformAccountRef{
					UserID: st.Number.SID,
					Email:  target.Email,
					Name:   st.Number.Number,
					Status: "assigned",
				}
				break
			}
		}
	}
	return refs, nil
}

// Licenses aggregates seat availability on the platforms that meter seats.
// One platform erroring does not hide the others; it is reported unavailable
// and blocks the overall can-onboard verdict.
func (r *Roster) Licenses(ctx context.Context) (*ports.LicenseReport, error) {
	report := &ports.LicenseReport{
		CanOnboard: true,
		Licenses:   map[domain.Platform]*domain.LicenseInfo{},
	}

	sources := []struct {
		platform domain.Platform
		fetch    func(context.Context) (*domain.LicenseInfo, error)
	}{
		{domain.PlatformCalendly, r.scheduling.LicenseInfo},
		{domain.PlatformZoom, r.video.LicenseInfo},
	}
	for _, src := range sources {
		info, err := src.fetch(ctx)
		if err != nil {
			r.log.Warn().Err(err).Str("platform", string(src.platform)).Msg("license lookup failed")
			report.Licenses[src.platform] = &domain.LicenseInfo{Platform: src.platform, Error: err.Error()}
			report.UnavailablePlatforms = append(report.UnavailablePlatforms, src.platform)
			report.CanOnboard = false
			continue
		}
		report.Licenses[src.platform] = info
		if !info.HasAvailableLicenses {
			report.UnavailablePlatforms = append(report.UnavailablePlatforms, src.platform)
			report.CanOnboard = false
		}
	}
	return report, nil
}
