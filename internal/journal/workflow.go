package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Workflow applies lifecycle operations to entry snapshots. Every method
// works on a copy: on failure the caller's snapshot is untouched, on success
// the new snapshot is returned for the caller to persist.
type Workflow struct {
	periods  PeriodLookup
	accounts AccountResolver
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewWorkflow constructs a Workflow. accounts may be nil when account
// existence is enforced elsewhere.
func NewWorkflow(periods PeriodLookup, accounts AccountResolver) *Workflow {
	return &Workflow{periods: periods, accounts: accounts, now: time.Now, newID: uuid.New}
}

// WithNow overrides the clock for testing.
func (w *Workflow) WithNow(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// CreateInput is a candidate entry: header plus zero or more lines.
type CreateInput struct {
	Header
	Lines []Line
}

// UpdateInput lists the header fields to change. Nil fields are kept. Lines
// replace the current set only when ReplaceLines is true.
type UpdateInput struct {
	JournalNumber  *string
	EntryDate      *time.Time
	EntryType      *EntryType
	SourceType     *SourceType
	FiscalPeriodID *string
	Currency       *string
	Description    *string
	Lines          []Line
	ReplaceLines   bool
}

func (a Actor) validate() error {
	if strings.TrimSpace(a.OrgID) == "" || strings.TrimSpace(a.UserID) == "" {
		return ErrActorRequired
	}
	return nil
}

// Create validates a candidate and returns it as a draft.
func (w *Workflow) Create(ctx context.Context, actor Actor, in CreateInput) (Entry, error) {
	if err := actor.validate(); err != nil {
		return Entry{}, err
	}
	status, err := Transition("", OpCreate)
	if err != nil {
		return Entry{}, err
	}
	header := normaliseHeader(in.Header)
	lines, err := w.checkContent(ctx, actor.OrgID, header, in.Lines)
	if err != nil {
		return Entry{}, err
	}
	if err := AssertPeriodOpen(ctx, w.periods, header.FiscalPeriodID); err != nil {
		return Entry{}, err
	}
	now := w.now().UTC()
	return Entry{
		ID:        w.newID(),
		OrgID:     actor.OrgID,
		Header:    header,
		Status:    status,
		Lines:     lines,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedBy: actor.UserID,
		UpdatedAt: now,
		Version:   1,
	}, nil
}

// Update edits header fields and optionally replaces the lines of a draft.
func (w *Workflow) Update(ctx context.Context, actor Actor, entry Entry, in UpdateInput) (Entry, error) {
	if _, err := w.transition(actor, entry, OpUpdate); err != nil {
		return Entry{}, err
	}
	header, err := applyUpdate(entry.Header, in)
	if err != nil {
		return Entry{}, err
	}
	lines := entry.Lines
	if in.ReplaceLines {
		lines = in.Lines
	}
	return w.edit(ctx, actor, entry, header, lines)
}

// AddLine appends a line to a draft.
func (w *Workflow) AddLine(ctx context.Context, actor Actor, entry Entry, line Line) (Entry, error) {
	if _, err := w.transition(actor, entry, OpUpdate); err != nil {
		return Entry{}, err
	}
	lines := make([]Line, 0, len(entry.Lines)+1)
	lines = append(lines, entry.Lines...)
	lines = append(lines, line)
	return w.edit(ctx, actor, entry, entry.Header, lines)
}

// RemoveLine drops a line from a draft and renumbers the remaining lines.
func (w *Workflow) RemoveLine(ctx context.Context, actor Actor, entry Entry, lineNumber int) (Entry, error) {
	if _, err := w.transition(actor, entry, OpUpdate); err != nil {
		return Entry{}, err
	}
	lines, err := RemoveLine(entry.Lines, lineNumber)
	if err != nil {
		return Entry{}, err
	}
	return w.edit(ctx, actor, entry, entry.Header, lines)
}

// Post finalises a balanced draft in an open period.
func (w *Workflow) Post(ctx context.Context, actor Actor, entry Entry) (Entry, error) {
	status, err := w.transition(actor, entry, OpPost)
	if err != nil {
		return Entry{}, err
	}
	header := normaliseHeader(entry.Header)
	lines, err := w.checkContent(ctx, actor.OrgID, header, entry.Lines)
	if err != nil {
		return Entry{}, err
	}
	if _, err := RequireBalanced(lines); err != nil {
		return Entry{}, err
	}
	if err := AssertPeriodOpen(ctx, w.periods, header.FiscalPeriodID); err != nil {
		return Entry{}, err
	}
	next := entry.Clone()
	next.Header = header
	next.Lines = lines
	next.Status = status
	now := w.touch(&next, actor)
	next.PostedBy = actor.UserID
	next.PostedAt = &now
	return next, nil
}

// Void marks a posted entry voided. Reversal bookkeeping is up to the caller.
func (w *Workflow) Void(actor Actor, entry Entry, reason string) (Entry, error) {
	status, err := w.transition(actor, entry, OpVoid)
	if err != nil {
		return Entry{}, err
	}
	next := entry.Clone()
	next.Status = status
	now := w.touch(&next, actor)
	next.VoidedBy = actor.UserID
	next.VoidedAt = &now
	next.VoidReason = strings.TrimSpace(reason)
	return next, nil
}

// Delete authorises removal of a draft. The caller performs the removal.
func (w *Workflow) Delete(ctx context.Context, actor Actor, entry Entry) error {
	if _, err := w.transition(actor, entry, OpDelete); err != nil {
		return err
	}
	return AssertPeriodOpen(ctx, w.periods, entry.FiscalPeriodID)
}

func (w *Workflow) transition(actor Actor, entry Entry, op Operation) (Status, error) {
	if err := actor.validate(); err != nil {
		return "", err
	}
	if entry.OrgID != actor.OrgID {
		return "", ErrForbidden
	}
	return Transition(entry.Status, op)
}

func (w *Workflow) edit(ctx context.Context, actor Actor, entry Entry, header Header, lines []Line) (Entry, error) {
	header = normaliseHeader(header)
	validated, err := w.checkContent(ctx, actor.OrgID, header, lines)
	if err != nil {
		return Entry{}, err
	}
	if err := AssertPeriodOpen(ctx, w.periods, entry.FiscalPeriodID); err != nil {
		return Entry{}, err
	}
	if header.FiscalPeriodID != entry.FiscalPeriodID {
		if err := AssertPeriodOpen(ctx, w.periods, header.FiscalPeriodID); err != nil {
			return Entry{}, err
		}
	}
	next := entry.Clone()
	next.Header = header
	next.Lines = validated
	w.touch(&next, actor)
	return next, nil
}

// checkContent validates header and lines together so one round trip
// reports every problem.
func (w *Workflow) checkContent(ctx context.Context, orgID string, header Header, lines []Line) ([]Line, error) {
	errs := ValidateHeader(header)
	validated, err := ValidateLines(lines, header.Currency)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			errs = append(errs, ve.Errors...)
		} else {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, validationErr(errs)
	}
	if err := resolveAccounts(ctx, w.accounts, orgID, validated); err != nil {
		return nil, err
	}
	return validated, nil
}

func (w *Workflow) touch(e *Entry, actor Actor) time.Time {
	now := w.now().UTC()
	e.UpdatedBy = actor.UserID
	e.UpdatedAt = now
	e.Version++
	return now
}

func applyUpdate(h Header, in UpdateInput) (Header, error) {
	if in.JournalNumber != nil && strings.TrimSpace(*in.JournalNumber) != h.JournalNumber {
		return Header{}, ErrJournalNumberImmutable
	}
	if in.EntryDate != nil {
		h.EntryDate = *in.EntryDate
	}
	if in.EntryType != nil {
		h.EntryType = *in.EntryType
	}
	if in.SourceType != nil {
		h.SourceType = *in.SourceType
	}
	if in.FiscalPeriodID != nil {
		h.FiscalPeriodID = *in.FiscalPeriodID
	}
	if in.Currency != nil {
		h.Currency = *in.Currency
	}
	if in.Description != nil {
		h.Description = *in.Description
	}
	return h, nil
}
