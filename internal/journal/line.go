package journal

import (
	"context"
	"strings"

	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

// AccountResolver confirms ledger accounts exist in the chart of accounts.
type AccountResolver interface {
	AccountExists(ctx context.Context, orgID, accountID string) (bool, error)
}

// ValidateLine checks a single line and returns it normalised: trimmed
// references and the currency defaulted from the entry.
func ValidateLine(line Line, entryCurrency string) (Line, error) {
	normalised, errs := checkLine(0, line, entryCurrency)
	if len(errs) > 0 {
		return Line{}, validationErr(errs)
	}
	return normalised, nil
}

// ValidateLines validates every line and reports all failures together.
// The returned lines are numbered 1..N.
func ValidateLines(lines []Line, entryCurrency string) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	var errs []error
	for i, line := range lines {
		line.LineNumber = i + 1
		normalised, lineErrs := checkLine(i, line, entryCurrency)
		if len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			continue
		}
		out = append(out, normalised)
	}
	if len(errs) > 0 {
		return nil, validationErr(errs)
	}
	return out, nil
}

func checkLine(index int, line Line, entryCurrency string) (Line, []error) {
	var errs []error
	fail := func(err error) {
		errs = append(errs, &LineError{Index: index, LineNumber: line.LineNumber, Err: err})
	}

	line.LedgerAccountID = strings.TrimSpace(line.LedgerAccountID)
	line.CostCenterID = strings.TrimSpace(line.CostCenterID)
	if line.LedgerAccountID == "" {
		fail(ErrMissingAccount)
	}

	debit, credit := line.DebitAmount, line.CreditAmount
	switch {
	case debit.IsNegative() || credit.IsNegative():
		fail(ErrNegativeAmount)
	case !debit.FitsScale(money.StorageScale) || !credit.FitsScale(money.StorageScale):
		fail(ErrAmountPrecision)
	case debit.IsZero() && credit.IsZero():
		fail(ErrBothAmountsZero)
	case !debit.IsZero() && !credit.IsZero():
		fail(ErrBothAmountsNonzero)
	}

	line.Currency = strings.ToUpper(strings.TrimSpace(line.Currency))
	if line.Currency == "" {
		line.Currency = strings.ToUpper(strings.TrimSpace(entryCurrency))
	}
	if line.Currency != "" && !money.ValidCurrency(line.Currency) {
		fail(ErrInvalidCurrency)
	}
	return line, errs
}

// resolveAccounts reports lines whose account the resolver does not know as
// ErrMissingAccount. Resolver failures are returned unchanged.
func resolveAccounts(ctx context.Context, resolver AccountResolver, orgID string, lines []Line) error {
	if resolver == nil {
		return nil
	}
	var errs []error
	for i, line := range lines {
		ok, err := resolver.AccountExists(ctx, orgID, line.LedgerAccountID)
		if err != nil {
			return err
		}
		if !ok {
			errs = append(errs, &LineError{Index: i, LineNumber: line.LineNumber, Err: ErrMissingAccount})
		}
	}
	return validationErr(errs)
}
