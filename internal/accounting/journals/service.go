package journals

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// Notifier learns about committed postings and voids.
type Notifier interface {
	JournalChanged(ctx context.Context, ev Event) error
}

// TransitionRecorder counts journal operations by outcome.
type TransitionRecorder interface {
	ObserveJournalTransition(operation, outcome string)
}

// Service runs journal workflows inside repository transactions. Every
// mutation locks the entry row, checks the caller's version and asks the
// period gate from inside the same transaction.
type Service struct {
	repo     Repository
	notifier Notifier
	metrics  TransitionRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, metrics TransitionRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, metrics: metrics, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// txLookups exposes the transaction's period and account reads to the
// domain workflow.
type txLookups struct {
	tx    TxRepository
	orgID string
}

func (l txLookups) IsPeriodClosed(ctx context.Context, periodID string) (bool, error) {
	return l.tx.PeriodClosed(ctx, l.orgID, periodID)
}

func (l txLookups) AccountExists(ctx context.Context, orgID, accountID string) (bool, error) {
	return l.tx.AccountExists(ctx, orgID, accountID)
}

func (s *Service) workflow(tx TxRepository, orgID string) *journal.Workflow {
	lookups := txLookups{tx: tx, orgID: orgID}
	wf := journal.NewWorkflow(lookups, lookups)
	wf.WithNow(s.now)
	return wf
}

func (s *Service) Get(ctx context.Context, actor journal.Actor, id uuid.UUID) (journal.Entry, error) {
	if actor.OrgID == "" {
		return journal.Entry{}, journal.ErrActorRequired
	}
	return s.repo.Get(ctx, actor.OrgID, id)
}

func (s *Service) List(ctx context.Context, actor journal.Actor, filter ListFilter) (ListResult, error) {
	if actor.OrgID == "" {
		return ListResult{}, journal.ErrActorRequired
	}
	entries, total, err := s.repo.List(ctx, actor.OrgID, filter)
	if err != nil {
		return ListResult{}, err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return ListResult{Entries: entries, Pagination: internalShared.NewPagination(filter.Page, filter.PerPage, total)}, nil
}

// Preview validates a candidate and returns its balance without persisting.
func (s *Service) Preview(_ context.Context, in journal.CreateInput) (journal.BalanceResult, error) {
	return journal.Preview(in)
}

// Create stores a new draft. A non-empty idempotency key is claimed in the
// same transaction, so a replayed request fails with ErrDuplicateRequest.
func (s *Service) Create(ctx context.Context, actor journal.Actor, in journal.CreateInput, idempotencyKey string) (journal.Entry, error) {
	var entry journal.Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if idempotencyKey != "" {
			if err := tx.ClaimIdempotencyKey(ctx, actor.OrgID, idempotencyKey); err != nil {
				return err
			}
		}
		created, err := s.workflow(tx, actor.OrgID).Create(ctx, actor, in)
		if err != nil {
			return err
		}
		if err := tx.Insert(ctx, created); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, auditLog(actor, "journal.create", created, map[string]any{
			"number": created.JournalNumber,
			"lines":  len(created.Lines),
		})); err != nil {
			return err
		}
		entry = created
		return nil
	})
	s.observe(journal.OpCreate, err)
	if err != nil {
		return journal.Entry{}, err
	}
	return entry, nil
}

func (s *Service) Update(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64, in journal.UpdateInput) (journal.Entry, error) {
	return s.mutate(ctx, actor, journal.OpUpdate, id, expectedVersion, func(ctx context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error) {
		next, err := wf.Update(ctx, actor, current, in)
		return next, map[string]any{"lines": len(next.Lines), "replaced_lines": in.ReplaceLines}, err
	})
}

func (s *Service) AddLine(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64, line journal.Line) (journal.Entry, error) {
	return s.mutate(ctx, actor, journal.OpUpdate, id, expectedVersion, func(ctx context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error) {
		next, err := wf.AddLine(ctx, actor, current, line)
		return next, map[string]any{"added_line": len(next.Lines)}, err
	})
}

func (s *Service) RemoveLine(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64, lineNumber int) (journal.Entry, error) {
	return s.mutate(ctx, actor, journal.OpUpdate, id, expectedVersion, func(ctx context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error) {
		next, err := wf.RemoveLine(ctx, actor, current, lineNumber)
		return next, map[string]any{"removed_line": lineNumber}, err
	})
}

func (s *Service) Post(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64) (journal.Entry, error) {
	entry, err := s.mutate(ctx, actor, journal.OpPost, id, expectedVersion, func(ctx context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error) {
		next, err := wf.Post(ctx, actor, current)
		if err != nil {
			return journal.Entry{}, nil, err
		}
		bal := journal.CheckBalance(next.Lines)
		return next, map[string]any{
			"number":        next.JournalNumber,
			"total_debits":  bal.TotalDebits.Format(),
			"total_credits": bal.TotalCredits.Format(),
		}, nil
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.notify(ctx, EventPosted, entry)
	return entry, nil
}

func (s *Service) Void(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64, reason string) (journal.Entry, error) {
	entry, err := s.mutate(ctx, actor, journal.OpVoid, id, expectedVersion, func(_ context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error) {
		next, err := wf.Void(actor, current, reason)
		return next, map[string]any{"reason": next.VoidReason}, err
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.notify(ctx, EventVoided, entry)
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, actor journal.Actor, id uuid.UUID, expectedVersion int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.lockCurrent(ctx, tx, actor, id, expectedVersion)
		if err != nil {
			return err
		}
		if err := s.workflow(tx, actor.OrgID).Delete(ctx, actor, current); err != nil {
			return err
		}
		if err := tx.Delete(ctx, actor.OrgID, id, current.Version); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, auditLog(actor, "journal.delete", current, map[string]any{"number": current.JournalNumber}))
	})
	s.observe(journal.OpDelete, err)
	return err
}

// Reverse creates a draft that offsets a posted entry. The original stays
// posted; voiding it is a separate decision.
func (s *Service) Reverse(ctx context.Context, actor journal.Actor, id uuid.UUID, in journal.ReverseInput) (journal.Entry, error) {
	var reversal journal.Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetForUpdate(ctx, actor.OrgID, id)
		if err != nil {
			return err
		}
		draft, err := s.workflow(tx, actor.OrgID).Reverse(ctx, actor, original, in)
		if err != nil {
			return err
		}
		if err := tx.Insert(ctx, draft); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, auditLog(actor, "journal.reverse", draft, map[string]any{
			"original_id":     original.ID.String(),
			"original_number": original.JournalNumber,
		})); err != nil {
			return err
		}
		reversal = draft
		return nil
	})
	s.observe(journal.OpCreate, err)
	if err != nil {
		return journal.Entry{}, err
	}
	return reversal, nil
}

type mutation func(ctx context.Context, wf *journal.Workflow, current journal.Entry) (journal.Entry, map[string]any, error)

func (s *Service) mutate(ctx context.Context, actor journal.Actor, op journal.Operation, id uuid.UUID, expectedVersion int64, fn mutation) (journal.Entry, error) {
	var out journal.Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.lockCurrent(ctx, tx, actor, id, expectedVersion)
		if err != nil {
			return err
		}
		next, meta, err := fn(ctx, s.workflow(tx, actor.OrgID), current)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, next, current.Version); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, auditLog(actor, "journal."+string(op), next, meta)); err != nil {
			return err
		}
		out = next
		return nil
	})
	s.observe(op, err)
	if err != nil {
		return journal.Entry{}, err
	}
	return out, nil
}

// lockCurrent loads the entry under a row lock. A zero expectedVersion
// skips the optimistic check.
func (s *Service) lockCurrent(ctx context.Context, tx TxRepository, actor journal.Actor, id uuid.UUID, expectedVersion int64) (journal.Entry, error) {
	if actor.OrgID == "" || actor.UserID == "" {
		return journal.Entry{}, journal.ErrActorRequired
	}
	current, err := tx.GetForUpdate(ctx, actor.OrgID, id)
	if err != nil {
		return journal.Entry{}, err
	}
	if expectedVersion != 0 && current.Version != expectedVersion {
		return journal.Entry{}, shared.ErrVersionConflict
	}
	return current, nil
}

func (s *Service) notify(ctx context.Context, typ EventType, entry journal.Entry) {
	if s.notifier == nil {
		return
	}
	ev := Event{Type: typ, OrgID: entry.OrgID, EntryID: entry.ID, PeriodID: entry.FiscalPeriodID, Version: entry.Version}
	if err := s.notifier.JournalChanged(ctx, ev); err != nil {
		s.logger.Warn("journal notification failed",
			slog.String("event", string(typ)),
			slog.String("entry_id", entry.ID.String()),
			slog.Any("error", err))
	}
}

func (s *Service) observe(op journal.Operation, err error) {
	outcome := Outcome(err)
	if s.metrics != nil {
		s.metrics.ObserveJournalTransition(string(op), outcome)
	}
	if outcome == "error" {
		s.logger.Error("journal operation failed", slog.String("operation", string(op)), slog.Any("error", err))
	}
}

// Outcome classifies an operation result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrVersionConflict), errors.Is(err, shared.ErrDuplicateNumber), errors.Is(err, shared.ErrDuplicateRequest):
		return "conflict"
	case isDomainError(err):
		return "rejected"
	default:
		return "error"
	}
}

var domainErrors = []error{
	journal.ErrMissingAccount, journal.ErrBothAmountsZero, journal.ErrBothAmountsNonzero, journal.ErrNegativeAmount,
	journal.ErrInvalidCurrency, journal.ErrMinimumLineCount, journal.ErrMixedCurrency, journal.ErrUnbalanced,
	journal.ErrPeriodClosed, journal.ErrEntryNotEditable, journal.ErrEntryTerminal, journal.ErrInvalidTransition,
	journal.ErrInvalidHeader, journal.ErrJournalNumberImmutable, journal.ErrLineNotFound, journal.ErrActorRequired,
	journal.ErrForbidden, money.ErrInvalidAmount, shared.ErrJournalNotFound, shared.ErrPeriodNotFound,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func auditLog(actor journal.Actor, action string, entry journal.Entry, meta map[string]any) internalShared.AuditLog {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["status"] = entry.Status
	meta["version"] = entry.Version
	return internalShared.AuditLog{
		OrgID:    actor.OrgID,
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: entry.ID.String(),
		Meta:     meta,
		At:       entry.UpdatedAt,
	}
}
