package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
	platformdb "github.com/odyssey-erp/odyssey-journals/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// idempotencyModule scopes journal keys in idempotency_keys.
const idempotencyModule = "journals"

// Repository encapsulates DB operations for journals.
type Repository interface {
	Get(ctx context.Context, orgID string, id uuid.UUID) (journal.Entry, error)
	List(ctx context.Context, orgID string, filter ListFilter) ([]journal.Entry, int, error)
	Posted(ctx context.Context, orgID, periodID string) ([]journal.Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction. Period and
// account checks run here so they observe the same snapshot as the write.
type TxRepository interface {
	GetForUpdate(ctx context.Context, orgID string, id uuid.UUID) (journal.Entry, error)
	Insert(ctx context.Context, entry journal.Entry) error
	Update(ctx context.Context, entry journal.Entry, prevVersion int64) error
	Delete(ctx context.Context, orgID string, id uuid.UUID, version int64) error

	PeriodClosed(ctx context.Context, orgID, periodID string) (bool, error)
	AccountExists(ctx context.Context, orgID, accountID string) (bool, error)
	ClaimIdempotencyKey(ctx context.Context, orgID, key string) error
	RecordAudit(ctx context.Context, log internalShared.AuditLog) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, org_id, journal_number, entry_date, entry_type, source_type, fiscal_period_id, currency, description,
status, reversal_of, created_by, created_at, updated_by, updated_at, posted_by, posted_at, voided_by, voided_at, void_reason, version`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanEntry(row pgx.Row) (journal.Entry, error) {
	var (
		e                             journal.Entry
		updatedBy, postedBy, voidedBy *string
		description, voidReason       *string
	)
	err := row.Scan(&e.ID, &e.OrgID, &e.JournalNumber, &e.EntryDate, &e.EntryType, &e.SourceType, &e.FiscalPeriodID, &e.Currency, &description,
		&e.Status, &e.ReversalOf, &e.CreatedBy, &e.CreatedAt, &updatedBy, &e.UpdatedAt, &postedBy, &e.PostedAt, &voidedBy, &e.VoidedAt, &voidReason, &e.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return journal.Entry{}, shared.ErrJournalNotFound
		}
		return journal.Entry{}, err
	}
	e.Description = deref(description)
	e.UpdatedBy = deref(updatedBy)
	e.PostedBy = deref(postedBy)
	e.VoidedBy = deref(voidedBy)
	e.VoidReason = deref(voidReason)
	return e, nil
}

func loadEntry(ctx context.Context, q querier, orgID string, id uuid.UUID, lock string) (journal.Entry, error) {
	entry, err := scanEntry(q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id=$1 AND id=$2 `+lock, orgID, id))
	if err != nil {
		return journal.Entry{}, err
	}
	byEntry, err := loadLines(ctx, q, []uuid.UUID{entry.ID})
	if err != nil {
		return journal.Entry{}, err
	}
	entry.Lines = byEntry[entry.ID]
	return entry, nil
}

func loadLines(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]journal.Line, error) {
	out := make(map[uuid.UUID][]journal.Line, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT entry_id, line_number, ledger_account_id, cost_center_id, description, debit_amount::text, credit_amount::text, currency
FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			entryID                 uuid.UUID
			line                    journal.Line
			costCenter, description *string
			debit, credit           string
		)
		if err := rows.Scan(&entryID, &line.LineNumber, &line.LedgerAccountID, &costCenter, &description, &debit, &credit, &line.Currency); err != nil {
			return nil, err
		}
		if line.DebitAmount, err = parseNumeric(debit); err != nil {
			return nil, err
		}
		if line.CreditAmount, err = parseNumeric(credit); err != nil {
			return nil, err
		}
		line.CostCenterID = deref(costCenter)
		line.Description = deref(description)
		out[entryID] = append(out[entryID], line)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID string, id uuid.UUID) (journal.Entry, error) {
	return loadEntry(ctx, r.db, orgID, id, "")
}

func (r *repository) List(ctx context.Context, orgID string, filter ListFilter) ([]journal.Entry, int, error) {
	where := []string{"org_id=$1"}
	args := []any{orgID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.PeriodID != "" {
		args = append(args, filter.PeriodID)
		where = append(where, fmt.Sprintf("fiscal_period_id=$%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	page := internalShared.NewPagination(filter.Page, filter.PerPage, total)
	args = append(args, page.PerPage, page.Offset())
	entries, err := r.queryEntries(ctx, fmt.Sprintf(`SELECT `+entryColumns+` FROM journal_entries WHERE %s
ORDER BY entry_date DESC, journal_number DESC LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) Posted(ctx context.Context, orgID, periodID string) ([]journal.Entry, error) {
	return r.queryEntries(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id=$1 AND fiscal_period_id=$2 AND status='posted' ORDER BY journal_number`, orgID, periodID)
}

func (r *repository) queryEntries(ctx context.Context, sql string, args ...any) ([]journal.Entry, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var (
		entries []journal.Entry
		ids     []uuid.UUID
	)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	byEntry, err := loadLines(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = byEntry[entries[i].ID]
	}
	return entries, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return platformdb.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, orgID string, id uuid.UUID) (journal.Entry, error) {
	return loadEntry(ctx, r.tx, orgID, id, "FOR UPDATE")
}

func (r *txRepository) Insert(ctx context.Context, e journal.Entry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO journal_entries (`+entryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		e.ID, e.OrgID, e.JournalNumber, e.EntryDate, e.EntryType, e.SourceType, e.FiscalPeriodID, e.Currency, nullString(e.Description),
		e.Status, e.ReversalOf, e.CreatedBy, e.CreatedAt, nullString(e.UpdatedBy), e.UpdatedAt, nullString(e.PostedBy), e.PostedAt,
		nullString(e.VoidedBy), e.VoidedAt, nullString(e.VoidReason), e.Version)
	if err != nil {
		if platformdb.IsUniqueViolation(err) {
			return shared.ErrDuplicateNumber
		}
		return err
	}
	return r.insertLines(ctx, e.ID, e.Lines)
}

func (r *txRepository) Update(ctx context.Context, e journal.Entry, prevVersion int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET entry_date=$3, entry_type=$4, source_type=$5, fiscal_period_id=$6, currency=$7,
description=$8, status=$9, updated_by=$10, updated_at=$11, posted_by=$12, posted_at=$13, voided_by=$14, voided_at=$15, void_reason=$16, version=$17
WHERE org_id=$1 AND id=$2 AND version=$18`,
		e.OrgID, e.ID, e.EntryDate, e.EntryType, e.SourceType, e.FiscalPeriodID, e.Currency,
		nullString(e.Description), e.Status, nullString(e.UpdatedBy), e.UpdatedAt, nullString(e.PostedBy), e.PostedAt,
		nullString(e.VoidedBy), e.VoidedAt, nullString(e.VoidReason), e.Version, prevVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVersionConflict
	}
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, e.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, e.ID, e.Lines)
}

func (r *txRepository) Delete(ctx context.Context, orgID string, id uuid.UUID, version int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, id); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE org_id=$1 AND id=$2 AND version=$3 AND status='draft'`, orgID, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

func (r *txRepository) insertLines(ctx context.Context, entryID uuid.UUID, lines []journal.Line) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(`INSERT INTO journal_lines (entry_id, line_number, ledger_account_id, cost_center_id, description, debit_amount, credit_amount, currency)
VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8)`,
			entryID, line.LineNumber, line.LedgerAccountID, nullString(line.CostCenterID), nullString(line.Description),
			line.DebitAmount.Format(), line.CreditAmount.Format(), line.Currency)
	}
	return r.tx.SendBatch(ctx, batch).Close()
}

func (r *txRepository) PeriodClosed(ctx context.Context, orgID, periodID string) (bool, error) {
	status, err := periods.StatusForShare(ctx, r.tx, orgID, periodID)
	if err != nil {
		return false, err
	}
	return status.Closed(), nil
}

func (r *txRepository) AccountExists(ctx context.Context, orgID, accountID string) (bool, error) {
	var active bool
	err := r.tx.QueryRow(ctx, `SELECT is_active FROM ledger_accounts WHERE org_id=$1 AND id=$2`, orgID, accountID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

func (r *txRepository) ClaimIdempotencyKey(ctx context.Context, orgID, key string) error {
	err := internalShared.NewIdempotencyStore(r.tx).CheckAndInsert(ctx, orgID, key, idempotencyModule)
	if errors.Is(err, internalShared.ErrIdempotencyConflict) {
		return shared.ErrDuplicateRequest
	}
	return err
}

func (r *txRepository) RecordAudit(ctx context.Context, log internalShared.AuditLog) error {
	return internalShared.NewAuditLogger(r.tx).Record(ctx, log)
}

// Helpers
func parseNumeric(s string) (money.Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.Amount{}, fmt.Errorf("accounting: scan amount %q: %w", s, err)
	}
	return money.New(d), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
