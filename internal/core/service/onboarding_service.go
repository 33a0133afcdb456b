// Package service contains the lifecycle orchestrators. They depend only on
// the port interfaces, treat each platform stage as an isolated unit of work,
// and report per-stage outcomes as data instead of aborting a run midway.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/api/metrics"
	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

const (
	// maxEmailVariants bounds the collision loop when deriving a work email.
	maxEmailVariants = 10
	// numberSearchLimit is how many purchasable numbers one search requests.
	numberSearchLimit = 20
)

// Onboarding provisions a new closer on every platform in the fixed order.
type Onboarding struct {
	directory  ports.Directory
	scheduling ports.Scheduling
	video      ports.Video
	telephony  ports.Telephony
	crm        ports.CRM

	employeeDomain string
	areaCode       string
	log            zerolog.Logger
}

func NewOnboarding(
	directory ports.Directory,
	scheduling ports.Scheduling,
	video ports.Video,
	telephony ports.Telephony,
	crm ports.CRM,
	employeeDomain, areaCode string,
	log zerolog.Logger,
) *Onboarding {
	return &Onboarding{
		directory:      directory,
		scheduling:     scheduling,
		video:          video,
		telephony:      telephony,
		crm:            crm,
		employeeDomain: employeeDomain,
		areaCode:       areaCode,
		log:            log.With().Str("service", "onboarding").Logger(),
	}
}

// Onboard runs every platform stage in order. A stage failure is recorded in
// the progress report and the run continues; only invalid input aborts the
// whole run.
func (s *Onboarding) Onboard(ctx context.Context, in ports.OnboardInput) (*ports.OnboardResult, error) {
	identity := domain.Identity{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		PersonalEmail: strings.TrimSpace(in.PersonalEmail),
	}
	if identity.FirstName == "" || identity.LastName == "" {
		return nil, domain.Validationf("firstName and lastName are required")
	}

	runID := uuid.NewString()
	started := time.Now()
	log := s.log.With().Str("run_id", runID).Str("closer", identity.FullName()).Logger()
	log.Info().Msg("onboarding run started")

	progress := domain.NewProgress(domain.StagePending)

	stages := []struct {
		platform domain.Platform
		run      func(context.Context) *domain.StageResult
	}{
		{domain.PlatformGoogleWorkspace, func(ctx context.Context) *domain.StageResult {
			return s.directoryStage(ctx, &identity, strings.ToLower(strings.TrimSpace(in.Email)))
		}},
		{domain.PlatformCalendly, func(ctx context.Context) *domain.StageResult {
			return s.schedulingStage(ctx, identity)
		}},
		{domain.PlatformZoom, func(ctx context.Context) *domain.StageResult {
			return s.videoStage(ctx, identity)
		}},
		{domain.PlatformTwilio, func(ctx context.Context) *domain.StageResult {
			return s.telephonyStage(ctx, identity)
		}},
		{domain.PlatformGHL, func(ctx context.Context) *domain.StageResult {
			return s.crmStage(ctx, identity)
		}},
	}

	for _, stage := range stages {
		result := stage.run(ctx)
		progress[stage.platform] = result
		metrics.StagesTotal.WithLabelValues("onboard", string(stage.platform), string(result.Status)).Inc()
		if result.Status == domain.StageFailed {
			metrics.UpstreamErrorsTotal.WithLabelValues(string(stage.platform)).Inc()
			log.Warn().Str("platform", string(stage.platform)).Str("error", result.Error).Msg("stage failed")
		}
	}

	summary := progress.Summarize(len(stages))
	metrics.RunDuration.WithLabelValues("onboard").Observe(time.Since(started).Seconds())
	log.Info().
		Str("email", identity.WorkEmail).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("onboarding run finished")

	return &ports.OnboardResult{
		RunID:          runID,
		GeneratedEmail: identity.WorkEmail,
		Progress:       progress,
		Summary:        summary,
	}, nil
}

// directoryStage resolves the closer's work email and ensures a directory
// account exists at it. An account that already belongs to the same person
// means a resumed run; an account belonging to someone else is a name
// collision and the next deterministic variant is tried.
func (s *Onboarding) directoryStage(ctx context.Context, id *domain.Identity, requestedEmail string) *domain.StageResult {
	candidate := requestedEmail
	if candidate == "" {
		candidate = domain.DeriveEmail(id.FirstName, id.LastName, s.employeeDomain)
	}
	id.WorkEmail = candidate

	for variant := 2; ; variant++ {
		existing, err := s.directory.FindByEmail(ctx, candidate)
		if err != nil {
			return failedStage(err)
		}
		if existing == nil {
			break
		}
		if strings.EqualFold(existing.FirstName, id.FirstName) && strings.EqualFold(existing.LastName, id.LastName) {
			id.WorkEmail = candidate
			return &domain.StageResult{
				Status:        domain.StageSuccess,
				AlreadyExists: true,
				Data:          map[string]any{"email": candidate, "userId": existing.ID},
			}
		}
		if requestedEmail != "" {
			return failedStage(domain.Validationf("email %s belongs to a different user", candidate))
		}
		if variant > maxEmailVariants {
			return failedStage(fmt.Errorf("no free address for %s within %d variants", id.FullName(), maxEmailVariants))
		}
		candidate = domain.DeriveEmailVariant(id.FirstName, id.LastName, s.employeeDomain, variant)
		id.WorkEmail = candidate
	}

	account, err := s.directory.Create(ctx, ports.CreateAccountInput{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     candidate,
	})
	if err != nil {
		return failedStage(err)
	}
	return &domain.StageResult{
		Status: domain.StageSuccess,
		Data:   map[string]any{"email": account.Email, "userId": account.ID},
	}
}

func (s *Onboarding) schedulingStage(ctx context.Context, id domain.Identity) *domain.StageResult {
	existing, err := s.scheduling.FindByEmail(ctx, id.WorkEmail)
	if err != nil {
		return failedStage(err)
	}
	if existing != nil {
		return &domain.StageResult{
			Status:        domain.StageSuccess,
			AlreadyExists: true,
			Data:          map[string]any{"email": existing.Email, "uri": existing.URI},
		}
	}

	invitationURI, err := s.scheduling.Invite(ctx, id.WorkEmail)
	if err != nil {
		return failedStage(err)
	}
	return &domain.StageResult{
		Status: domain.StageSuccess,
		Data:   map[string]any{"email": id.WorkEmail, "invitationUri": invitationURI},
	}
}

func (s *Onboarding) videoStage(ctx context.Context, id domain.Identity) *domain.StageResult {
	existing, err := s.video.FindByEmail(ctx, id.WorkEmail)
	if err != nil {
		return failedStage(err)
	}
	if existing != nil {
		return &domain.StageResult{
			Status:        domain.StageSuccess,
			AlreadyExists: true,
			Data:          map[string]any{"email": existing.Email, "userId": existing.ID},
		}
	}

	account, err := s.video.Create(ctx, ports.CreateAccountInput{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.WorkEmail,
	})
	if err != nil {
		return failedStage(err)
	}
	return &domain.StageResult{
		Status: domain.StageSuccess,
		Data:   map[string]any{"email": id.WorkEmail, "userId": account.ID},
	}
}

// telephonyStage provisions a dedicated number labelled with the closer's
// full name: search the area-code pool, purchase, attach to the messaging
// service, then verify campaign coverage. A purchase conflict (someone bought
// the number between search and purchase, or a retried run) falls back to the
// owned inventory before giving up to manual action.
func (s *Onboarding) telephonyStage(ctx context.Context, id domain.Identity) *domain.StageResult {
	friendly := id.FullName()

	owned, err := s.telephony.ListAll(ctx)
	if err != nil {
		return failedStage(err)
	}
	for _, n := range owned {
		if strings.EqualFold(n.FriendlyName, friendly) {
			return &domain.StageResult{
				Status:        domain.StageSuccess,
				AlreadyExists: true,
				Data:          map[string]any{"phoneNumber": n.Number, "sid": n.SID},
			}
		}
	}

	available, err := s.telephony.SearchAvailable(ctx, s.areaCode, numberSearchLimit)
	if err != nil {
		return failedStage(err)
	}
	if len(available) == 0 {
		return failedStage(fmt.Errorf("%w: no purchasable numbers in area code %s", domain.ErrNoInventory, s.areaCode))
	}

	bought, err := s.telephony.Purchase(ctx, available[0].Number, friendly)
	if err != nil {
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && ue.IsConflict() {
			return s.recoverPurchaseConflict(ctx, friendly)
		}
		return failedStage(err)
	}

	data := map[string]any{"phoneNumber": bought.Number, "sid": bought.SID}
	if err := s.telephony.AddToMessagingService(ctx, bought.SID); err != nil {
		data["messagingService"] = false
		data["warning"] = "number purchased but not attached to the messaging service: " + err.Error()
		return &domain.StageResult{Status: domain.StageManual, Data: data}
	}
	data["messagingService"] = true

	registered, err := s.telephony.AddToCampaign(ctx, bought.SID)
	if err != nil {
		data["campaignRegistered"] = false
		data["warning"] = "campaign check failed: " + err.Error()
	} else {
		data["campaignRegistered"] = registered
	}
	return &domain.StageResult{Status: domain.StageSuccess, Data: data}
}

// recoverPurchaseConflict re-reads the owned inventory after a purchase 409.
// The number may already be ours under the closer's name (retried run), or an
// unlabelled number from the right area code can be relabelled and reused.
func (s *Onboarding) recoverPurchaseConflict(ctx context.Context, friendly string) *domain.StageResult {
	owned, err := s.telephony.ListAll(ctx)
	if err != nil {
		return failedStage(err)
	}

	for _, n := range owned {
		if strings.EqualFold(n.FriendlyName, friendly) {
			return &domain.StageResult{
				Status:        domain.StageSuccess,
				AlreadyExists: true,
				Data:          map[string]any{"phoneNumber": n.Number, "sid": n.SID},
			}
		}
	}
	for _, n := range owned {
		if n.InAreaCode(s.areaCode) && unassignedNumber(n) {
			if err := s.telephony.Update(ctx, n.SID, ports.UpdateNumberInput{FriendlyName: friendly}); err != nil {
				return failedStage(err)
			}
			return &domain.StageResult{
				Status: domain.StageSuccess,
				Data:   map[string]any{"phoneNumber": n.Number, "sid": n.SID, "reassigned": true},
			}
		}
	}

	return &domain.StageResult{
		Status: domain.StageManual,
		Error:  "purchase conflict and no reusable number in inventory; assign a number manually",
	}
}

// unassignedNumber reports whether a provisioned number has no owner label.
// Freshly purchased numbers default their friendly name to the number itself.
func unassignedNumber(n domain.PhoneNumber) bool {
	return n.FriendlyName == "" || n.FriendlyName == n.Number
}

func (s *Onboarding) crmStage(ctx context.Context, id domain.Identity) *domain.StageResult {
	existing, err := s.crm.FindByEmail(ctx, id.WorkEmail)
	if err != nil {
		return failedStage(err)
	}
	if existing != nil {
		return &domain.StageResult{
			Status:        domain.StageSuccess,
			AlreadyExists: true,
			Data:          map[string]any{"email": existing.Email, "userId": existing.ID},
		}
	}

	user, err := s.crm.Create(ctx, id.FirstName, id.LastName, id.WorkEmail, "user")
	if err != nil {
		return failedStage(err)
	}
	return &domain.StageResult{
		Status: domain.StageSuccess,
		Data:   map[string]any{"email": user.Email, "userId": user.ID},
	}
}

func failedStage(err error) *domain.StageResult {
	return &domain.StageResult{Status: domain.StageFailed, Error: err.Error()}
}
