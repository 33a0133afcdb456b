package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and the HTTP layer.
var (
	// ErrNotFound means the upstream platform reports the target resource absent.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation means caller input is malformed; raised before any upstream call.
	ErrValidation = errors.New("validation failed")
	// ErrSafetyGate means a destructive operation's preconditions are not met.
	ErrSafetyGate = errors.New("safety check failed")
	// ErrNoInventory means no resource matching the required constraints is available
	// upstream (e.g. no phone numbers left in the area-code pool).
	ErrNoInventory = errors.New("no available inventory")
	// ErrNotConfigured means a platform adapter is missing required credentials.
	ErrNotConfigured = errors.New("platform not configured")
)

// UpstreamError wraps a third-party API failure that is not a plain not-found:
// auth failures, rate limits, conflicts, timeouts. Orchestrators catch these
// per stage and record them as data instead of aborting the run.
type UpstreamError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream error (status %d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: upstream error: %s", e.Platform, e.Message)
}

// IsConflict reports whether the upstream rejected the call because the
// resource is already owned (HTTP 409 family).
func (e *UpstreamError) IsConflict() bool {
	return e.StatusCode == 409
}

// Validationf builds an ErrValidation with a caller-facing detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// SafetyGatef builds an ErrSafetyGate with a caller-facing detail message.
func SafetyGatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSafetyGate, fmt.Sprintf(format, args...))
}

// UpstreamStatus extracts the HTTP status from an error chain, or 0.
func UpstreamStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
