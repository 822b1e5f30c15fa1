package periods

import (
	"context"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, orgID, id string) (Period, error) {
	return s.repo.Get(ctx, orgID, id)
}

// ListOpen returns the periods that still accept postings.
func (s *Service) ListOpen(ctx context.Context) ([]Period, error) {
	return s.repo.ListOpen(ctx)
}

// IsPeriodClosed reports whether the period refuses journal changes. Unknown
// periods return ErrPeriodNotFound.
func (s *Service) IsPeriodClosed(ctx context.Context, orgID, id string) (bool, error) {
	p, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return false, err
	}
	return p.Status.Closed(), nil
}

// Lookup binds the service to one organisation for the journal period gate.
func (s *Service) Lookup(orgID string) journal.PeriodLookup {
	return journal.PeriodLookupFunc(func(ctx context.Context, periodID string) (bool, error) {
		return s.IsPeriodClosed(ctx, orgID, periodID)
	})
}

// SetStatus moves a period through OPEN, CLOSED and LOCKED. Status changes
// serialise on the period lock.
func (s *Service) SetStatus(ctx context.Context, actor internalShared.Principal, id string, in StatusInput) (Period, error) {
	var out Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, actor.OrgID, id)
		if err != nil {
			return err
		}
		if err := internalShared.ValidatePeriodTransition(string(current.Status), string(in.Status), in.Override); err != nil {
			return err
		}
		if current.Status == in.Status {
			out = current
			return nil
		}
		now := s.now().UTC()
		if err := tx.UpdateStatus(ctx, actor.OrgID, id, in.Status, actor.UserID, now); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, internalShared.AuditLog{
			OrgID:    actor.OrgID,
			ActorID:  actor.UserID,
			Action:   "period.status",
			Entity:   "fiscal_period",
			EntityID: id,
			Meta: map[string]any{
				"from":     current.Status,
				"to":       in.Status,
				"override": in.Override,
				"reason":   strings.TrimSpace(in.Reason),
			},
			At: now,
		}); err != nil {
			return err
		}
		out = current
		out.Status = in.Status
		out.UpdatedAt = now
		out.ClosedAt, out.ClosedBy = nil, nil
		if in.Status.Closed() {
			by := actor.UserID
			out.ClosedAt = &now
			out.ClosedBy = &by
		}
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	return out, nil
}
