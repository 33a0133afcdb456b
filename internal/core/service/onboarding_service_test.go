package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

func newOnboarding(d *stubDirectory, s *stubScheduling, v *stubVideo, t *stubTelephony, c *stubCRM) *Onboarding {
	return NewOnboarding(d, s, v, t, c, testDomain, testAreaCode, testLog)
}

func TestOnboarding_ProvisionsEverywhere(t *testing.T) {
	directory := newStubDirectory()
	scheduling := newStubScheduling()
	video := newStubVideo()
	telephony := newStubTelephony()
	crm := newStubCRM()
	svc := newOnboarding(directory, scheduling, video, telephony, crm)

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	if result.GeneratedEmail != "ann-l@tjr.test" {
		t.Fatalf("unexpected derived email: %s", result.GeneratedEmail)
	}
	if result.Summary.Total != 5 || result.Summary.Successful != 5 || result.Summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	for platform, stage := range result.Progress {
		if stage.Status != domain.StageSuccess {
			t.Fatalf("%s stage not successful: %+v", platform, stage)
		}
	}

	if len(directory.created) != 1 || directory.created[0] != "ann-l@tjr.test" {
		t.Fatalf("directory account not created: %v", directory.created)
	}
	if len(scheduling.invited) != 1 {
		t.Fatalf("scheduling invite not sent: %v", scheduling.invited)
	}
	if len(video.created) != 1 {
		t.Fatalf("video account not created: %v", video.created)
	}
	if len(telephony.purchased) != 1 || telephony.purchased[0] != "+16505550100" {
		t.Fatalf("number not purchased: %v", telephony.purchased)
	}
	if len(telephony.msgAdded) != 1 {
		t.Fatalf("number not attached to messaging service: %v", telephony.msgAdded)
	}
	if len(crm.created) != 1 {
		t.Fatalf("crm user not created: %v", crm.created)
	}
	if result.RunID == "" {
		t.Fatal("expected a run ID")
	}
}

func TestOnboarding_EmailCollisionPicksNextVariant(t *testing.T) {
	directory := newStubDirectory()
	directory.accounts["ann-l@tjr.test"] = &ports.Account{
		ID: "dir-other", Email: "ann-l@tjr.test", FirstName: "Ann", LastName: "Lopez",
	}
	svc := newOnboarding(directory, newStubScheduling(), newStubVideo(), newStubTelephony(), newStubCRM())

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}
	if result.GeneratedEmail != "ann-l2@tjr.test" {
		t.Fatalf("expected collision variant ann-l2, got %s", result.GeneratedEmail)
	}
	if len(directory.created) != 1 || directory.created[0] != "ann-l2@tjr.test" {
		t.Fatalf("expected account at variant address: %v", directory.created)
	}
}

func TestOnboarding_ResumedRunReportsExistingAccounts(t *testing.T) {
	email := "ann-l@tjr.test"
	directory := newStubDirectory()
	directory.accounts[email] = &ports.Account{ID: "dir-1", Email: email, FirstName: "Ann", LastName: "Lee"}
	scheduling := newStubScheduling()
	scheduling.members[email] = &ports.Account{Email: email, URI: "https://sched.test/users/1"}
	video := newStubVideo()
	video.accounts[email] = &ports.Account{ID: "vid-1", Email: email}
	telephony := newStubTelephony()
	telephony.owned = []domain.PhoneNumber{{SID: "PN1", Number: "+16505550100", FriendlyName: "Ann Lee"}}
	crm := newStubCRM()
	crm.users = []domain.CRMUser{{ID: "crm-1", Email: email}}

	svc := newOnboarding(directory, scheduling, video, telephony, crm)
	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	if result.Summary.Successful != 5 {
		t.Fatalf("expected all stages successful: %+v", result.Summary)
	}
	for platform, stage := range result.Progress {
		if !stage.AlreadyExists {
			t.Fatalf("%s stage should report alreadyExists: %+v", platform, stage)
		}
	}
	if len(directory.created)+len(scheduling.invited)+len(video.created)+len(telephony.purchased)+len(crm.created) != 0 {
		t.Fatal("resumed run must not create anything")
	}
}

func TestOnboarding_StageFailureDoesNotAbortRun(t *testing.T) {
	scheduling := newStubScheduling()
	scheduling.inviteErr = errors.New("scheduling down")
	crm := newStubCRM()
	svc := newOnboarding(newStubDirectory(), scheduling, newStubVideo(), newStubTelephony(), crm)

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	if result.Progress[domain.PlatformCalendly].Status != domain.StageFailed {
		t.Fatalf("scheduling stage should fail: %+v", result.Progress[domain.PlatformCalendly])
	}
	if result.Summary.Failed != 1 || result.Summary.Successful != 4 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if len(crm.created) != 1 {
		t.Fatal("downstream stages must still run after a failure")
	}
}

func TestOnboarding_EmptyNumberSearchFailsStageWithoutPanic(t *testing.T) {
	telephony := newStubTelephony()
	// Inventory exists but nothing matches the configured area code, so the
	// search comes back empty without an error.
	telephony.available = []domain.AvailableNumber{{Number: "+14155550100"}}
	crm := newStubCRM()
	svc := newOnboarding(newStubDirectory(), newStubScheduling(), newStubVideo(), telephony, crm)

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	stage := result.Progress[domain.PlatformTwilio]
	if stage.Status != domain.StageFailed {
		t.Fatalf("empty search must fail the stage: %+v", stage)
	}
	if !strings.Contains(stage.Error, domain.ErrNoInventory.Error()) {
		t.Fatalf("stage error should carry the inventory condition: %q", stage.Error)
	}
	if len(telephony.purchased) != 0 {
		t.Fatalf("nothing should be purchased: %v", telephony.purchased)
	}
	if len(crm.created) != 1 {
		t.Fatal("downstream stages must still run")
	}
}

func TestOnboarding_PurchaseConflictReusesInventoryNumber(t *testing.T) {
	telephony := newStubTelephony()
	telephony.purchaseErr = &domain.UpstreamError{Platform: "twilio", StatusCode: 409, Message: "number taken"}
	telephony.owned = []domain.PhoneNumber{{SID: "PN9", Number: "+16505550199", FriendlyName: "+16505550199"}}
	svc := newOnboarding(newStubDirectory(), newStubScheduling(), newStubVideo(), telephony, newStubCRM())

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	stage := result.Progress[domain.PlatformTwilio]
	if stage.Status != domain.StageSuccess {
		t.Fatalf("expected conflict recovery, got %+v", stage)
	}
	if telephony.updated["PN9"] != "Ann Lee" {
		t.Fatalf("inventory number not relabelled: %v", telephony.updated)
	}
}

func TestOnboarding_PurchaseConflictWithoutFallbackNeedsManualAction(t *testing.T) {
	telephony := newStubTelephony()
	telephony.purchaseErr = &domain.UpstreamError{Platform: "twilio", StatusCode: 409, Message: "number taken"}
	svc := newOnboarding(newStubDirectory(), newStubScheduling(), newStubVideo(), telephony, newStubCRM())

	result, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Onboard returned error: %v", err)
	}

	stage := result.Progress[domain.PlatformTwilio]
	if stage.Status != domain.StageManual {
		t.Fatalf("expected manual_action status, got %+v", stage)
	}
	if result.Summary.ManualAction != 1 {
		t.Fatalf("summary should count manual action: %+v", result.Summary)
	}
}

func TestOnboarding_RejectsMissingName(t *testing.T) {
	svc := newOnboarding(newStubDirectory(), newStubScheduling(), newStubVideo(), newStubTelephony(), newStubCRM())

	_, err := svc.Onboard(context.Background(), ports.OnboardInput{FirstName: "", LastName: "Lee"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
