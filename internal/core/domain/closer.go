package domain

import (
	"fmt"
	"strings"
)

// Platform identifies one of the five external systems a closer lives on.
type Platform string

const (
	PlatformGoogleWorkspace Platform = "googleWorkspace"
	PlatformCalendly        Platform = "calendly"
	PlatformZoom            Platform = "zoom"
	PlatformTwilio          Platform = "twilio"
	PlatformGHL             Platform = "ghl"
)

// PlatformOrder is the fixed orchestration order for both onboarding and
// offboarding. The directory account comes first because every downstream
// invitation references the work email; the CRM comes last because deleting
// it severs the lookups the other teardown steps depend on.
var PlatformOrder = []Platform{
	PlatformGoogleWorkspace,
	PlatformCalendly,
	PlatformZoom,
	PlatformTwilio,
	PlatformGHL,
}

// StageStatus is the lifecycle state of a single orchestration stage.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
	// StageManual marks a degraded outcome that needs admin follow-up but
	// must not count the stage as failed (e.g. a phone-number purchase
	// conflict with no matching fallback).
	StageManual StageStatus = "manual_action"
)

// Identity is a person moving through the lifecycle. It exists only for the
// duration of a single orchestration run; no row backs it anywhere.
type Identity struct {
	FirstName     string
	LastName      string
	WorkEmail     string
	PersonalEmail string
}

// FullName is used as the telephony friendly name for the identity's number.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// StageResult records the outcome of one platform stage within a run.
type StageResult struct {
	Status        StageStatus    `json:"status"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	AlreadyExists bool           `json:"alreadyExists,omitempty"`
}

// Progress is the ordered per-platform report of an orchestration run. It is
// the only record the operation leaves behind; it persists solely in the
// HTTP response.
type Progress map[Platform]*StageResult

// NewProgress seeds every platform with the given initial status.
func NewProgress(initial StageStatus) Progress {
	p := make(Progress, len(PlatformOrder))
	for _, platform := range PlatformOrder {
		p[platform] = &StageResult{Status: initial}
	}
	return p
}

// Summary condenses a Progress into counts for the caller.
type Summary struct {
	Total        int `json:"total"`
	Successful   int `json:"successful"`
	Failed       int `json:"failed"`
	Skipped      int `json:"skipped,omitempty"`
	ManualAction int `json:"manualAction,omitempty"`
}

// Summarize counts stage outcomes. total is the number of stages that were in
// scope for the run (all five for onboarding, the selected subset for
// offboarding).
func (p Progress) Summarize(total int) Summary {
	s := Summary{Total: total}
	for _, r := range p {
		switch r.Status {
		case StageSuccess:
			s.Successful++
		case StageFailed:
			s.Failed++
		case StageSkipped:
			s.Skipped++
		case StageManual:
			s.ManualAction++
		}
	}
	return s
}

// PlatformSelection chooses which platforms an offboarding run touches.
type PlatformSelection map[Platform]bool

// AllPlatforms selects every platform, the offboarding default.
func AllPlatforms() PlatformSelection {
	sel := make(PlatformSelection, len(PlatformOrder))
	for _, p := range PlatformOrder {
		sel[p] = true
	}
	return sel
}

// Count returns how many platforms are selected.
func (s PlatformSelection) Count() int {
	n := 0
	for _, selected := range s {
		if selected {
			n++
		}
	}
	return n
}

// DeriveEmail builds the canonical work-email candidate for an identity:
// lowercase first name, a dash, the lowercase first letter of the last name.
// "John Doe" at example.com becomes john-d@example.com.
func DeriveEmail(firstName, lastName, domain string) string {
	return fmt.Sprintf("%s@%s", deriveLocalPart(firstName, lastName), domain)
}

// DeriveEmailVariant builds the nth disambiguation candidate for a colliding
// name. Variant 2 of "John Doe" is john-d2@example.com. The sequence is
// deterministic so an interrupted onboarding re-derives the same address.
func DeriveEmailVariant(firstName, lastName, domain string, n int) string {
	return fmt.Sprintf("%s%d@%s", deriveLocalPart(firstName, lastName), n, domain)
}

func deriveLocalPart(firstName, lastName string) string {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	initial := ""
	if last != "" {
		initial = last[:1]
	}
	return first + "-" + initial
}
