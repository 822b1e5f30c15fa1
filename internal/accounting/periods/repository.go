package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	platformdb "github.com/odyssey-erp/odyssey-journals/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, orgID, id string) (Period, error)
	ListOpen(ctx context.Context) ([]Period, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, orgID, id string) (Period, error)
	UpdateStatus(ctx context.Context, orgID, id string, status PeriodStatus, actorID string, at time.Time) error
	RecordAudit(ctx context.Context, log internalShared.AuditLog) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, org_id, code, start_date, end_date, status, closed_at, closed_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.OrgID, &p.Code, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, orgID, id string) (Period, error) {
	return scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id=$1 AND id=$2`, orgID, id))
}

// ListOpen returns every OPEN period across organisations, oldest first.
func (r *repository) ListOpen(ctx context.Context) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE status='OPEN' ORDER BY start_date, org_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return platformdb.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, orgID, id string) (Period, error) {
	if _, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, internalShared.PeriodLockKey(orgID, id)); err != nil {
		return Period{}, err
	}
	return scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id=$1 AND id=$2 FOR UPDATE`, orgID, id))
}

func (r *txRepository) UpdateStatus(ctx context.Context, orgID, id string, status PeriodStatus, actorID string, at time.Time) error {
	var closedAt any
	var closedBy any
	if status.Closed() {
		closedAt = at
		closedBy = actorID
	}
	cmd, err := r.tx.Exec(ctx, `UPDATE fiscal_periods SET status=$3, closed_at=$4, closed_by=$5, updated_at=$6 WHERE org_id=$1 AND id=$2`,
		orgID, id, status, closedAt, closedBy, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

func (r *txRepository) RecordAudit(ctx context.Context, log internalShared.AuditLog) error {
	return internalShared.NewAuditLogger(r.tx).Record(ctx, log)
}

// StatusForShare reads a period's status inside tx and holds a share lock on
// the row until commit, so a concurrent close waits for the journal change.
func StatusForShare(ctx context.Context, tx pgx.Tx, orgID, id string) (PeriodStatus, error) {
	var status PeriodStatus
	err := tx.QueryRow(ctx, `SELECT status FROM fiscal_periods WHERE org_id=$1 AND id=$2 FOR SHARE`, orgID, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrPeriodNotFound
		}
		return "", err
	}
	return status, nil
}
