// Package ledger derives account balances from posted journal entries.
package ledger

import (
	"sort"
	"strings"

	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

// AccountBalance aggregates posted lines of one account in one currency.
type AccountBalance struct {
	AccountID string       `json:"accountId"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Currency  string       `json:"currency"`
	Debit     money.Amount `json:"debit"`
	Credit    money.Amount `json:"credit"`
}

// Net is debit minus credit.
func (a AccountBalance) Net() money.Amount {
	return money.Sub(a.Debit, a.Credit)
}

// GroupKey returns a key used for grouping trial balance rows.
func (a AccountBalance) GroupKey() string {
	code := a.Code
	if code == "" {
		code = a.AccountID
	}
	if idx := strings.Index(code, "."); idx > 0 {
		return code[:idx]
	}
	if len(code) >= 2 {
		return code[:2]
	}
	return code
}

// TrialBalanceGroup aggregates accounts sharing a code prefix.
type TrialBalanceGroup struct {
	Key      string           `json:"key"`
	Accounts []AccountBalance `json:"accounts"`
}

// CurrencyTotal sums one currency across the trial balance.
type CurrencyTotal struct {
	Currency string       `json:"currency"`
	Debit    money.Amount `json:"debit"`
	Credit   money.Amount `json:"credit"`
	Balanced bool         `json:"balanced"`
}

// TrialBalance lists per-account totals of a fiscal period.
type TrialBalance struct {
	OrgID    string              `json:"orgId"`
	PeriodID string              `json:"periodId"`
	Groups   []TrialBalanceGroup `json:"groups"`
	Totals   []CurrencyTotal     `json:"totals"`
	Balanced bool                `json:"balanced"`
}

// BuildTrialBalance groups balances by code prefix and totals each currency.
// The ledger is balanced when every currency's debits equal its credits
// within one minor unit.
func BuildTrialBalance(orgID, periodID string, balances []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	totals := make(map[string]*CurrencyTotal)
	currencies := make([]string, 0)

	for _, acc := range balances {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		grp.Accounts = append(grp.Accounts, acc)

		tot, ok := totals[acc.Currency]
		if !ok {
			tot = &CurrencyTotal{Currency: acc.Currency, Debit: money.Zero(), Credit: money.Zero()}
			totals[acc.Currency] = tot
			currencies = append(currencies, acc.Currency)
		}
		tot.Debit = money.Add(tot.Debit, acc.Debit)
		tot.Credit = money.Add(tot.Credit, acc.Credit)
	}

	sort.Strings(keys)
	sort.Strings(currencies)
	result := TrialBalance{OrgID: orgID, PeriodID: periodID, Balanced: true}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			if grp.Accounts[i].Code != grp.Accounts[j].Code {
				return grp.Accounts[i].Code < grp.Accounts[j].Code
			}
			return grp.Accounts[i].Currency < grp.Accounts[j].Currency
		})
		result.Groups = append(result.Groups, *grp)
	}
	for _, cur := range currencies {
		tot := totals[cur]
		diff := money.Sub(tot.Debit, tot.Credit).Abs()
		tot.Balanced = money.Compare(diff, money.MinorUnit(cur)) < 0
		if !tot.Balanced {
			result.Balanced = false
		}
		result.Totals = append(result.Totals, *tot)
	}
	return result
}
