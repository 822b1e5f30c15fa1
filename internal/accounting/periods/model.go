package periods

import (
	"time"

	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// PeriodStatus enumerates valid period states.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// Closed reports whether the status blocks journal changes. Locked periods
// are closed with a stronger reopening policy.
func (s PeriodStatus) Closed() bool {
	return !internalShared.PeriodAcceptsPostings(string(s))
}

// Period represents a fiscal period window.
type Period struct {
	ID        string       `json:"id"`
	OrgID     string       `json:"orgId"`
	Code      string       `json:"code"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	ClosedBy  *string      `json:"closedBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// StatusInput requests a period status change.
type StatusInput struct {
	Status   PeriodStatus `json:"status" validate:"required,oneof=OPEN CLOSED LOCKED"`
	Override bool         `json:"override"`
	Reason   string       `json:"reason" validate:"max=500"`
}
