package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

func newRosterFixture() (*Roster, *stubTelephony, *stubCRM, *stubScheduling, *stubVideo) {
	directory := newStubDirectory()
	scheduling := newStubScheduling()
	video := newStubVideo()
	telephony := newStubTelephony()
	crm := newStubCRM()
	svc := NewRoster(crm, directory, scheduling, video, telephony, testDomain, testAreaCode, testLog)
	return svc, telephony, crm, scheduling, video
}

func TestRoster_ListClosersIgnoresNumbersOutsidePool(t *testing.T) {
	svc, telephony, crm, _, _ := newRosterFixture()
	crm.users = []domain.CRMUser{{ID: "crm-1", Email: "ann-l@tjr.test"}}
	telephony.owned = []domain.PhoneNumber{{SID: "PN7", Number: "+14155550107"}}
	crm.linkByNumber["+14155550107"] = "crm-1"

	closers, err := svc.ListClosers(context.Background())
	if err != nil {
		t.Fatalf("ListClosers returned error: %v", err)
	}
	if closers[0].AssignedPhoneNumber != "" || closers[0].AssignedPhoneSID != "" {
		t.Fatalf("out-of-pool number must not be attributed: %+v", closers[0])
	}
}

func TestRoster_ListClosersJoinsAssignedNumbers(t *testing.T) {
	svc, telephony, crm, _, _ := newRosterFixture()
	crm.users = []domain.CRMUser{
		{ID: "crm-1", FirstName: "Ann", LastName: "Lee", Email: "ann-l@tjr.test"},
		{ID: "crm-2", Name: "Joe Smith", Email: "joe-s@tjr.test"},
		{ID: "crm-3", Name: "Outside Contact", Email: "contact@gmail.com"},
	}
	telephony.owned = []domain.PhoneNumber{{SID: "PN1", Number: "+16505550101"}}
	crm.linkByNumber["+16505550101"] = "crm-1"

	closers, err := svc.ListClosers(context.Background())
	if err != nil {
		t.Fatalf("ListClosers returned error: %v", err)
	}

	if len(closers) != 2 {
		t.Fatalf("non-employees must be filtered out, got %d closers", len(closers))
	}
	if closers[0].AssignedPhoneNumber != "+16505550101" || closers[0].AssignedPhoneSID != "PN1" {
		t.Fatalf("number not joined: %+v", closers[0])
	}
	if closers[1].AssignedPhoneNumber != "" {
		t.Fatalf("unlinked closer must have no number: %+v", closers[1])
	}
	if closers[0].Name != "Ann Lee" {
		t.Fatalf("display name fallback broken: %+v", closers[0])
	}
}

func TestRoster_ListClosersDegradesWithoutTelephony(t *testing.T) {
	svc, telephony, crm, _, _ := newRosterFixture()
	crm.users = []domain.CRMUser{{ID: "crm-1", Email: "ann-l@tjr.test"}}
	telephony.listErr = errors.New("telephony down")

	closers, err := svc.ListClosers(context.Background())
	if err != nil {
		t.Fatalf("roster must survive a telephony outage: %v", err)
	}
	if len(closers) != 1 || closers[0].AssignedPhoneNumber != "" {
		t.Fatalf("unexpected degraded roster: %+v", closers)
	}
}

func TestRoster_LicensesBlocksOnboardingWhenSeatsExhausted(t *testing.T) {
	svc, _, _, scheduling, video := newRosterFixture()
	scheduling.license = &domain.LicenseInfo{
		Platform: domain.PlatformCalendly, TotalSeats: 10, UsedSeats: 10, HasAvailableLicenses: false,
	}

	report, err := svc.Licenses(context.Background())
	if err != nil {
		t.Fatalf("Licenses returned error: %v", err)
	}
	if report.CanOnboard {
		t.Fatal("exhausted seats must block onboarding")
	}
	if len(report.UnavailablePlatforms) != 1 || report.UnavailablePlatforms[0] != domain.PlatformCalendly {
		t.Fatalf("unexpected unavailable platforms: %v", report.UnavailablePlatforms)
	}

	video.licenseErr = errors.New("video api down")
	report, err = svc.Licenses(context.Background())
	if err != nil {
		t.Fatalf("Licenses must capture per-platform errors: %v", err)
	}
	if report.Licenses[domain.PlatformZoom].Error == "" {
		t.Fatalf("video error not captured: %+v", report.Licenses[domain.PlatformZoom])
	}
}

func TestRoster_PlatformAccountsUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newRosterFixture()

	if _, err := svc.PlatformAccounts(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
