// Package journal holds the double-entry rules for journal entries: line
// validation, balance checking, the draft/posted/voided lifecycle and the
// fiscal period gate. It performs no persistence of its own.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

// Status enumerates journal lifecycle values.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
	StatusVoided Status = "voided"
)

// EntryType classifies the bookkeeping intent of an entry.
type EntryType string

const (
	EntryTypeStandard  EntryType = "standard"
	EntryTypeAdjusting EntryType = "adjusting"
	EntryTypeClosing   EntryType = "closing"
	EntryTypeReversing EntryType = "reversing"
	EntryTypeRecurring EntryType = "recurring"
)

// SourceType records which module originated the entry.
type SourceType string

const (
	SourceManual    SourceType = "manual"
	SourceInvoice   SourceType = "invoice"
	SourcePayment   SourceType = "payment"
	SourceOrder     SourceType = "order"
	SourcePayroll   SourceType = "payroll"
	SourceInventory SourceType = "inventory"
	SourceOther     SourceType = "other"
)

// Actor identifies who performs an operation and for which organisation.
type Actor struct {
	OrgID  string
	UserID string
}

// Header carries the mutable descriptive fields of an entry.
type Header struct {
	JournalNumber  string     `json:"journalNumber" validate:"required,max=64"`
	EntryDate      time.Time  `json:"entryDate" validate:"required"`
	EntryType      EntryType  `json:"entryType" validate:"required,oneof=standard adjusting closing reversing recurring"`
	SourceType     SourceType `json:"sourceType" validate:"required,oneof=manual invoice payment order payroll inventory other"`
	FiscalPeriodID string     `json:"fiscalPeriodId" validate:"required,max=64"`
	Currency       string     `json:"currency" validate:"required,iso4217"`
	Description    string     `json:"description,omitempty" validate:"max=500"`
}

// Line stores a debit or credit amount for one ledger account.
type Line struct {
	LineNumber      int          `json:"lineNumber"`
	LedgerAccountID string       `json:"ledgerAccountId"`
	CostCenterID    string       `json:"costCenterId,omitempty"`
	Description     string       `json:"description,omitempty"`
	DebitAmount     money.Amount `json:"debitAmount"`
	CreditAmount    money.Amount `json:"creditAmount"`
	Currency        string       `json:"currency,omitempty"`
}

// IsDebit reports whether the line moves value on the debit side.
func (l Line) IsDebit() bool {
	return !l.DebitAmount.IsZero()
}

// Entry is a journal entry snapshot.
type Entry struct {
	ID    uuid.UUID `json:"id"`
	OrgID string    `json:"orgId"`
	Header
	Status     Status     `json:"status"`
	Lines      []Line     `json:"lines"`
	ReversalOf *uuid.UUID `json:"reversalOf,omitempty"`

	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedBy  string     `json:"updatedBy,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	PostedBy   string     `json:"postedBy,omitempty"`
	PostedAt   *time.Time `json:"postedAt,omitempty"`
	VoidedBy   string     `json:"voidedBy,omitempty"`
	VoidedAt   *time.Time `json:"voidedAt,omitempty"`
	VoidReason string     `json:"voidReason,omitempty"`

	// Version increases by one on every accepted mutation.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers can mutate it freely.
func (e Entry) Clone() Entry {
	out := e
	if e.Lines != nil {
		out.Lines = make([]Line, len(e.Lines))
		copy(out.Lines, e.Lines)
	}
	if e.ReversalOf != nil {
		id := *e.ReversalOf
		out.ReversalOf = &id
	}
	if e.PostedAt != nil {
		ts := *e.PostedAt
		out.PostedAt = &ts
	}
	if e.VoidedAt != nil {
		ts := *e.VoidedAt
		out.VoidedAt = &ts
	}
	return out
}

// Renumber assigns contiguous 1-based line numbers in slice order.
func Renumber(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		line.LineNumber = i + 1
		out[i] = line
	}
	return out
}

// RemoveLine drops the line with the given number and renumbers the rest,
// preserving their relative order.
func RemoveLine(lines []Line, lineNumber int) ([]Line, error) {
	idx := -1
	for i, line := range lines {
		if line.LineNumber == lineNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	remaining := make([]Line, 0, len(lines)-1)
	remaining = append(remaining, lines[:idx]...)
	remaining = append(remaining, lines[idx+1:]...)
	return Renumber(remaining), nil
}
