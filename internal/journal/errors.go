package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

var (
	// ErrMissingAccount indicates an empty or unresolvable ledger account.
	ErrMissingAccount = errors.New("journal: ledger account required")
	// ErrBothAmountsZero indicates a line that moves no value.
	ErrBothAmountsZero = errors.New("journal: line has neither debit nor credit")
	// ErrBothAmountsNonzero indicates a line that is debit and credit at once.
	ErrBothAmountsNonzero = errors.New("journal: line cannot be both debit and credit")
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = errors.New("journal: line amount cannot be negative")
	// ErrAmountPrecision indicates an amount finer than the ledger stores.
	ErrAmountPrecision = errors.New("journal: line amount has too many decimal places")
	// ErrInvalidCurrency indicates a currency code outside ISO 4217.
	ErrInvalidCurrency = errors.New("journal: invalid currency code")
	// ErrMinimumLineCount indicates fewer than two lines at posting.
	ErrMinimumLineCount = errors.New("journal: entry requires at least two lines")
	// ErrMixedCurrency indicates lines in more than one currency.
	ErrMixedCurrency = errors.New("journal: lines use more than one currency")
	// ErrUnbalanced indicates debits differ from credits beyond tolerance.
	ErrUnbalanced = errors.New("journal: debits and credits must balance")
	// ErrPeriodClosed indicates the fiscal period does not accept changes.
	ErrPeriodClosed = errors.New("journal: fiscal period is closed")
	// ErrEntryNotEditable indicates a mutation on a posted entry.
	ErrEntryNotEditable = errors.New("journal: posted entry cannot be modified")
	// ErrEntryTerminal indicates any operation on a voided entry.
	ErrEntryTerminal = errors.New("journal: voided entry accepts no further operations")
	// ErrInvalidTransition indicates an operation not defined for the status.
	ErrInvalidTransition = errors.New("journal: invalid status transition")
	// ErrInvalidHeader indicates a header field failed validation.
	ErrInvalidHeader = errors.New("journal: invalid header")
	// ErrJournalNumberImmutable indicates an attempt to renumber an entry.
	ErrJournalNumberImmutable = errors.New("journal: journal number cannot change")
	// ErrLineNotFound indicates a line number outside the entry.
	ErrLineNotFound = errors.New("journal: line not found")
	// ErrActorRequired indicates a missing organisation or user.
	ErrActorRequired = errors.New("journal: acting user and organisation required")
	// ErrForbidden indicates the actor belongs to another organisation.
	ErrForbidden = errors.New("journal: entry belongs to another organisation")
	// ErrPeriodLookupMissing indicates the gate has no period collaborator.
	ErrPeriodLookupMissing = errors.New("journal: period lookup not configured")
)

// LineError ties a line failure to its position in the submitted entry.
type LineError struct {
	Index      int
	LineNumber int
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.LineNumber, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// FieldError reports a header field that failed a validation rule.
type FieldError struct {
	Field string
	Rule  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("journal: field %s failed %s", e.Field, e.Rule)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidHeader
}

// UnbalancedError carries the totals so callers can show the difference.
type UnbalancedError struct {
	TotalDebits  money.Amount
	TotalCredits money.Amount
	Difference   money.Amount
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("journal: debits %s and credits %s differ by %s", e.TotalDebits, e.TotalCredits, e.Difference)
}

func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}

// ValidationError aggregates every header and line failure of one request.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return "journal: validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// LineErrors returns the line-level failures in submission order.
func (e *ValidationError) LineErrors() []*LineError {
	var out []*LineError
	for _, err := range e.Errors {
		var le *LineError
		if errors.As(err, &le) {
			out = append(out, le)
		}
	}
	return out
}

func validationErr(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
