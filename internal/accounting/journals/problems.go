package journals

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
)

type problemKind struct {
	err    error
	status int
	title  string
	code   string
}

// problemKinds is ordered: the first match wins.
var problemKinds = []problemKind{
	{journal.ErrActorRequired, http.StatusUnauthorized, "Unauthorized", "actor_required"},
	{journal.ErrForbidden, http.StatusForbidden, "Forbidden", "forbidden"},
	{shared.ErrJournalNotFound, http.StatusNotFound, "Not Found", "journal_not_found"},
	{journal.ErrLineNotFound, http.StatusNotFound, "Not Found", "line_not_found"},
	{journal.ErrEntryTerminal, http.StatusConflict, "Entry Voided", "entry_terminal"},
	{journal.ErrEntryNotEditable, http.StatusConflict, "Entry Posted", "entry_not_editable"},
	{journal.ErrInvalidTransition, http.StatusConflict, "Invalid Transition", "invalid_transition"},
	{shared.ErrVersionConflict, http.StatusConflict, "Version Conflict", "version_conflict"},
	{shared.ErrDuplicateNumber, http.StatusConflict, "Duplicate Journal Number", "duplicate_number"},
	{shared.ErrDuplicateRequest, http.StatusConflict, "Duplicate Request", "duplicate_request"},
	{journal.ErrPeriodClosed, http.StatusConflict, "Period Closed", "period_closed"},
	{shared.ErrPeriodNotFound, http.StatusUnprocessableEntity, "Unknown Period", "period_not_found"},
	{journal.ErrJournalNumberImmutable, http.StatusUnprocessableEntity, "Validation Failed", "journal_number_immutable"},
	{journal.ErrMinimumLineCount, http.StatusUnprocessableEntity, "Validation Failed", "minimum_line_count"},
	{journal.ErrMixedCurrency, http.StatusUnprocessableEntity, "Validation Failed", "mixed_currency"},
	{money.ErrInvalidAmount, http.StatusUnprocessableEntity, "Validation Failed", "invalid_amount"},
}

var lineCodes = []struct {
	err  error
	code string
}{
	{journal.ErrMissingAccount, "missing_account"},
	{journal.ErrBothAmountsZero, "both_amounts_zero"},
	{journal.ErrBothAmountsNonzero, "both_amounts_nonzero"},
	{journal.ErrNegativeAmount, "negative_amount"},
	{journal.ErrAmountPrecision, "amount_precision"},
	{journal.ErrInvalidCurrency, "invalid_currency"},
}

// problemFor maps a domain failure to a problem document. Unknown errors
// report false and are left to the platform mapping.
func problemFor(err error) (httpx.ProblemDetail, bool) {
	var ve *journal.ValidationError
	if errors.As(err, &ve) {
		return httpx.ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Detail: "journal entry failed validation",
			Errors: fieldProblems(err),
		}, true
	}
	var ue *journal.UnbalancedError
	if errors.As(err, &ue) {
		return httpx.ProblemDetail{
			Title:  "Unbalanced Entry",
			Status: http.StatusUnprocessableEntity,
			Detail: ue.Error(),
			Extensions: map[string]any{
				"totalDebits":  ue.TotalDebits,
				"totalCredits": ue.TotalCredits,
				"difference":   ue.Difference,
			},
		}, true
	}
	for _, k := range problemKinds {
		if errors.Is(err, k.err) {
			return httpx.ProblemDetail{
				Title:  k.title,
				Status: k.status,
				Detail: err.Error(),
				Errors: []httpx.FieldProblem{{Code: k.code, Detail: k.err.Error()}},
			}, true
		}
	}
	return httpx.ProblemDetail{}, false
}

// fieldProblems flattens an aggregated validation failure into one entry per
// header field or line rule.
func fieldProblems(err error) []httpx.FieldProblem {
	var ve *journal.ValidationError
	if !errors.As(err, &ve) {
		if p, ok := problemFor(err); ok {
			return p.Errors
		}
		return []httpx.FieldProblem{{Code: "invalid", Detail: err.Error()}}
	}
	out := make([]httpx.FieldProblem, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		var fe *journal.FieldError
		var le *journal.LineError
		switch {
		case errors.As(e, &fe):
			out = append(out, httpx.FieldProblem{Field: fe.Field, Code: "invalid_field", Detail: fe.Rule})
		case errors.As(e, &le):
			out = append(out, httpx.FieldProblem{Line: le.LineNumber, Code: lineCode(le.Err), Detail: le.Err.Error()})
		default:
			out = append(out, httpx.FieldProblem{Code: "invalid", Detail: e.Error()})
		}
	}
	return out
}

func lineCode(err error) string {
	for _, c := range lineCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "invalid_line"
}
