package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
)

type Repository interface {
	List(ctx context.Context, orgID string) ([]Account, error)
	Get(ctx context.Context, orgID, id string) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, orgID string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, org_id, code, name, type, parent_id, is_active, created_at, updated_at
FROM ledger_accounts WHERE org_id=$1 ORDER BY code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		err := rows.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id string) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `SELECT id, org_id, code, name, type, parent_id, is_active, created_at, updated_at
FROM ledger_accounts WHERE org_id=$1 AND id=$2`, orgID, id).
		Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}
