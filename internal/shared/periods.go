package shared

import "errors"

// Period statuses shared by the period service and the journal gate.
const (
	PeriodStatusOpen   = "OPEN"
	PeriodStatusClosed = "CLOSED"
	PeriodStatusLocked = "LOCKED"
)

// ErrInvalidPeriodTransition indicates status change not allowed.
var ErrInvalidPeriodTransition = errors.New("period transition invalid")

// ValidatePeriodTransition checks transitions according to policy. A locked
// period only reopens to closed with an override.
func ValidatePeriodTransition(current, target string, hasOverride bool) error {
	if current == target {
		return nil
	}
	switch current {
	case PeriodStatusOpen:
		if target == PeriodStatusClosed || target == PeriodStatusLocked {
			return nil
		}
	case PeriodStatusClosed:
		if target == PeriodStatusOpen || target == PeriodStatusLocked {
			return nil
		}
	case PeriodStatusLocked:
		if target == PeriodStatusClosed && hasOverride {
			return nil
		}
	}
	return ErrInvalidPeriodTransition
}

// PeriodAcceptsPostings reports whether journal changes may land in a period
// with the given status.
func PeriodAcceptsPostings(status string) bool {
	return status == PeriodStatusOpen
}
