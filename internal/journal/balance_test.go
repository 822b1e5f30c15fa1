package journal_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

func usd(lines ...journal.Line) []journal.Line {
	out := make([]journal.Line, len(lines))
	for i, line := range lines {
		line.Currency = "USD"
		line.LineNumber = i + 1
		out[i] = line
	}
	return out
}

func TestCheckBalance(t *testing.T) {
	tests := []struct {
		name     string
		lines    []journal.Line
		balanced bool
		diff     string
	}{
		{
			name:     "one debit two credits",
			lines:    usd(debit("1100", "100.00"), credit("4000", "60.00"), credit("2100", "40.00")),
			balanced: true,
			diff:     "0",
		},
		{
			name:     "off by one cent",
			lines:    usd(debit("1100", "100.00"), credit("4000", "99.99")),
			balanced: false,
			diff:     "0.01",
		},
		{
			name:     "credits exceed debits",
			lines:    usd(debit("1100", "10"), credit("4000", "12.50")),
			balanced: false,
			diff:     "-2.5",
		},
		{
			name:     "fractional amounts summed exactly",
			lines:    usd(debit("1100", "0.333"), debit("1100", "0.333"), debit("1100", "0.334"), credit("4000", "1")),
			balanced: true,
			diff:     "0",
		},
		{
			name:     "single line",
			lines:    usd(debit("1100", "100.00")),
			balanced: false,
			diff:     "100",
		},
		{
			name:     "empty",
			lines:    nil,
			balanced: false,
			diff:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := journal.CheckBalance(tt.lines)
			assert.Equal(t, tt.balanced, res.Balanced)
			assert.True(t, res.Difference.Equal(money.New(decimal.RequireFromString(tt.diff))), "difference %s", res.Difference)
			assert.Equal(t, len(tt.lines), res.LineCount)
		})
	}
}

func TestCheckBalanceIsDeterministic(t *testing.T) {
	lines := usd(debit("1100", "100.00"), credit("4000", "99.99"))
	first := journal.CheckBalance(lines)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, journal.CheckBalance(lines))
	}
}

func TestToleranceFollowsCurrencyScale(t *testing.T) {
	jpy := []journal.Line{
		{LineNumber: 1, LedgerAccountID: "1100", DebitAmount: money.MustParse("1000"), Currency: "JPY"},
		{LineNumber: 2, LedgerAccountID: "4000", CreditAmount: money.MustParse("999.5"), Currency: "JPY"},
	}
	assert.True(t, journal.CheckBalance(jpy).Balanced)

	jpy[1].CreditAmount = money.MustParse("999")
	assert.False(t, journal.CheckBalance(jpy).Balanced)
}

func TestRequireBalanced(t *testing.T) {
	t.Run("minimum line count first", func(t *testing.T) {
		_, err := journal.RequireBalanced(usd(debit("1100", "100.00")))
		require.ErrorIs(t, err, journal.ErrMinimumLineCount)
	})

	t.Run("mixed currency", func(t *testing.T) {
		lines := usd(debit("1100", "100.00"), credit("4000", "100.00"))
		lines[1].Currency = "EUR"
		res, err := journal.RequireBalanced(lines)
		require.ErrorIs(t, err, journal.ErrMixedCurrency)
		assert.True(t, res.MixedCurrency)
	})

	t.Run("unbalanced carries totals", func(t *testing.T) {
		_, err := journal.RequireBalanced(usd(debit("1100", "100.00"), credit("4000", "99.99")))
		require.ErrorIs(t, err, journal.ErrUnbalanced)
		var ue *journal.UnbalancedError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, "100", ue.TotalDebits.String())
		assert.Equal(t, "99.99", ue.TotalCredits.String())
		assert.Equal(t, "0.01", ue.Difference.String())
	})

	t.Run("balanced", func(t *testing.T) {
		res, err := journal.RequireBalanced(usd(debit("1100", "100.00"), credit("4000", "60.00"), credit("2100", "40.00")))
		require.NoError(t, err)
		assert.Equal(t, "USD", res.Currency)
		assert.True(t, res.TotalDebits.Equal(res.TotalCredits))
	})
}
