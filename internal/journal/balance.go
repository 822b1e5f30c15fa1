package journal

import (
	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

// MinimumLines is the smallest line count that can represent a transfer.
const MinimumLines = 2

// BalanceResult summarises the debit and credit sides of a line set.
type BalanceResult struct {
	TotalDebits   money.Amount `json:"totalDebits"`
	TotalCredits  money.Amount `json:"totalCredits"`
	Difference    money.Amount `json:"difference"`
	Currency      string       `json:"currency,omitempty"`
	LineCount     int          `json:"lineCount"`
	MixedCurrency bool         `json:"mixedCurrency,omitempty"`
	Balanced      bool         `json:"balanced"`
}

// Tolerance is one minor unit of the currency. A difference of a full minor
// unit or more is unbalanced.
func Tolerance(currency string) money.Amount {
	return money.MinorUnit(currency)
}

// CheckBalance sums both sides exactly. Difference is debits minus credits.
// Sets with fewer than two lines or more than one currency never balance.
func CheckBalance(lines []Line) BalanceResult {
	debits := make([]money.Amount, 0, len(lines))
	credits := make([]money.Amount, 0, len(lines))
	currencies := make(map[string]struct{})
	var currency string
	for _, line := range lines {
		debits = append(debits, line.DebitAmount)
		credits = append(credits, line.CreditAmount)
		if line.Currency != "" {
			if _, seen := currencies[line.Currency]; !seen {
				currencies[line.Currency] = struct{}{}
				currency = line.Currency
			}
		}
	}
	res := BalanceResult{
		TotalDebits:   money.Sum(debits...),
		TotalCredits:  money.Sum(credits...),
		LineCount:     len(lines),
		MixedCurrency: len(currencies) > 1,
	}
	res.Difference = money.Sub(res.TotalDebits, res.TotalCredits)
	if !res.MixedCurrency {
		res.Currency = currency
	}
	res.Balanced = res.LineCount >= MinimumLines &&
		!res.MixedCurrency &&
		money.Compare(res.Difference.Abs(), Tolerance(res.Currency)) < 0
	return res
}

// RequireBalanced turns a BalanceResult into the posting precondition.
func RequireBalanced(lines []Line) (BalanceResult, error) {
	res := CheckBalance(lines)
	return res, res.Err()
}

// Err reports why the result fails the posting precondition, or nil. The
// line count is checked before any amount is looked at.
func (r BalanceResult) Err() error {
	if r.LineCount < MinimumLines {
		return ErrMinimumLineCount
	}
	if r.MixedCurrency {
		return ErrMixedCurrency
	}
	if !r.Balanced {
		return &UnbalancedError{
			TotalDebits:  r.TotalDebits,
			TotalCredits: r.TotalCredits,
			Difference:   r.Difference,
		}
	}
	return nil
}
