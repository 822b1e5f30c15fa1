package journals

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Status   journal.Status
	PeriodID string
	Page     int
	PerPage  int
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries    []journal.Entry   `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}

// EventType names a committed change that downstream ledgers react to.
type EventType string

const (
	EventPosted EventType = "posted"
	EventVoided EventType = "voided"
)

// Event describes a committed posting or void.
type Event struct {
	Type     EventType `json:"type"`
	OrgID    string    `json:"orgId"`
	EntryID  uuid.UUID `json:"entryId"`
	PeriodID string    `json:"periodId"`
	Version  int64     `json:"version"`
}
