package ledger

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

type Repository interface {
	PeriodBalances(ctx context.Context, orgID, periodID string) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// PeriodBalances sums posted lines per account and currency. Voided entries
// no longer count.
func (r *repository) PeriodBalances(ctx context.Context, orgID, periodID string) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT l.ledger_account_id, COALESCE(a.code, l.ledger_account_id), COALESCE(a.name, ''), l.currency,
       COALESCE(SUM(l.debit_amount), 0)::text, COALESCE(SUM(l.credit_amount), 0)::text
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
LEFT JOIN ledger_accounts a ON a.org_id = e.org_id AND a.id = l.ledger_account_id
WHERE e.org_id=$1 AND e.fiscal_period_id=$2 AND e.status='posted'
GROUP BY l.ledger_account_id, a.code, a.name, l.currency
ORDER BY 2, 4`, orgID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var (
			b             AccountBalance
			debit, credit string
		)
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Currency, &debit, &credit); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(debit)
		if err != nil {
			return nil, err
		}
		c, err := decimal.NewFromString(credit)
		if err != nil {
			return nil, err
		}
		b.Debit, b.Credit = money.New(d), money.New(c)
		out = append(out, b)
	}
	return out, rows.Err()
}
