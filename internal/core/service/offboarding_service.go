package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/api/metrics"
	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

// minUserIDLength guards against short identifiers that are likely indexes or
// typos rather than real CRM IDs. A truncated ID must never match a user.
const minUserIDLength = 10

// Offboarding tears a closer down across the platforms. Every run is gated:
// the ID must be plausible, the user must exist in the CRM, and the user must
// be on the employee domain. Failing any gate aborts before any deletion.
type Offboarding struct {
	directory  ports.Directory
	scheduling ports.Scheduling
	video      ports.Video
	telephony  ports.Telephony
	crm        ports.CRM

	employeeDomain string
	log            zerolog.Logger
}

func NewOffboarding(
	directory ports.Directory,
	scheduling ports.Scheduling,
	video ports.Video,
	telephony ports.Telephony,
	crm ports.CRM,
	employeeDomain string,
	log zerolog.Logger,
) *Offboarding {
	return &Offboarding{
		directory:      directory,
		scheduling:     scheduling,
		video:          video,
		telephony:      telephony,
		crm:            crm,
		employeeDomain: employeeDomain,
		log:            log.With().Str("service", "offboarding").Logger(),
	}
}

// Offboard removes the CRM user's accounts from the selected platforms (all
// of them when the selection is empty). The CRM record itself goes last so
// earlier stages can still resolve the user if the run is retried.
func (s *Offboarding) Offboard(ctx context.Context, id string, platforms domain.PlatformSelection) (*ports.OffboardResult, error) {
	id = strings.TrimSpace(id)
	if len(id) < minUserIDLength {
		return nil, domain.Validationf("user id must be at least %d characters", minUserIDLength)
	}
	// Only the absence of a selection means "everything". A caller who
	// supplied a selection, even one with every platform deselected, gets
	// exactly what they asked for.
	if platforms == nil {
		platforms = domain.AllPlatforms()
	}

	target, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !target.IsEmployee(s.employeeDomain) {
		return nil, domain.SafetyGatef("user %s (%s) is not on the %s domain and cannot be offboarded",
			target.DisplayName(), target.Email, s.employeeDomain)
	}

	runID := uuid.NewString()
	started := time.Now()
	log := s.log.With().Str("run_id", runID).Str("user_id", target.ID).Str("email", target.Email).Logger()
	log.Info().Int("platforms", platforms.Count()).Msg("offboarding run started")

	progress := domain.NewProgress(domain.StageSkipped)

	stages := []struct {
		platform domain.Platform
		run      func(context.Context) *domain.StageResult
	}{
		{domain.PlatformGoogleWorkspace, func(ctx context.Context) *domain.StageResult {
			return s.deleteStage(s.directory.Delete)(ctx, target.Email)
		}},
		{domain.PlatformCalendly, func(ctx context.Context) *domain.StageResult {
			return s.deleteStage(s.scheduling.Remove)(ctx, target.Email)
		}},
		{domain.PlatformZoom, func(ctx context.Context) *domain.StageResult {
			return s.deleteStage(s.video.Delete)(ctx, target.Email)
		}},
		{domain.PlatformTwilio, func(ctx context.Context) *domain.StageResult {
			return s.telephonyStage(ctx, target)
		}},
		{domain.PlatformGHL, func(ctx context.Context) *domain.StageResult {
			return s.deleteStage(s.crm.Delete)(ctx, target.ID)
		}},
	}

	for _, stage := range stages {
		if !platforms[stage.platform] {
			continue
		}
		result := stage.run(ctx)
		progress[stage.platform] = result
		metrics.StagesTotal.WithLabelValues("offboard", string(stage.platform), string(result.Status)).Inc()
		if result.Status == domain.StageFailed {
			metrics.UpstreamErrorsTotal.WithLabelValues(string(stage.platform)).Inc()
			log.Warn().Str("platform", string(stage.platform)).Str("error", result.Error).Msg("stage failed")
		}
	}

	summary := progress.Summarize(platforms.Count())
	metrics.RunDuration.WithLabelValues("offboard").Observe(time.Since(started).Seconds())
	log.Info().Int("successful", summary.Successful).Int("failed", summary.Failed).Msg("offboarding run finished")

	return &ports.OffboardResult{
		RunID:       runID,
		CloserName:  target.DisplayName(),
		CloserEmail: target.Email,
		Progress:    progress,
		Summary:     summary,
	}, nil
}

func (s *Offboarding) findUser(ctx context.Context, id string) (*domain.CRMUser, error) {
	users, err := s.crm.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: crm user %s", domain.ErrNotFound, id)
}

// deleteStage adapts a single idempotent delete call into a stage result.
func (s *Offboarding) deleteStage(remove func(context.Context, string) error) func(context.Context, string) *domain.StageResult {
	return func(ctx context.Context, key string) *domain.StageResult {
		if err := remove(ctx, key); err != nil {
			return failedStage(err)
		}
		return &domain.StageResult{Status: domain.StageSuccess}
	}
}

// telephonyStage releases only the numbers the CRM links to the departing
// user. Numbers that merely carry a similar label stay provisioned; the CRM
// link is the sole authority on ownership.
func (s *Offboarding) telephonyStage(ctx context.Context, target *domain.CRMUser) *domain.StageResult {
	numbers, err := s.telephony.ListAll(ctx)
	if err != nil {
		return failedStage(err)
	}
	statuses, err := s.crm.CompareWithTelephony(ctx, numbers)
	if err != nil {
		return failedStage(err)
	}

	var released []string
	var failures []string
	for _, st := range statuses {
		if st.LinkedUserID != target.ID {
			continue
		}
		if err := s.telephony.Release(ctx, st.Number.SID); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", st.Number.Number, err))
			continue
		}
		released = append(released, st.Number.Number)
	}

	data := map[string]any{"releasedNumbers": released, "releasedCount": len(released)}
	if len(failures) > 0 {
		return &domain.StageResult{
			Status: domain.StageFailed,
			Data:   data,
			Error:  strings.Join(failures, "; "),
		}
	}
	return &domain.StageResult{Status: domain.StageSuccess, Data: data}
}
