package journals

import (
	"time"

	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
)

// DateLayout is the wire format of entry dates.
const DateLayout = "2006-01-02"

// LineRequest describes one journal line in a request body.
type LineRequest struct {
	LedgerAccountID string       `json:"ledgerAccountId"`
	CostCenterID    string       `json:"costCenterId,omitempty" validate:"max=64"`
	Description     string       `json:"description,omitempty" validate:"max=500"`
	DebitAmount     money.Amount `json:"debitAmount"`
	CreditAmount    money.Amount `json:"creditAmount"`
	Currency        string       `json:"currency,omitempty"`
}

func (l LineRequest) toLine() journal.Line {
	return journal.Line{
		LedgerAccountID: l.LedgerAccountID,
		CostCenterID:    l.CostCenterID,
		Description:     l.Description,
		DebitAmount:     l.DebitAmount,
		CreditAmount:    l.CreditAmount,
		Currency:        l.Currency,
	}
}

func toLines(in []LineRequest) []journal.Line {
	out := make([]journal.Line, 0, len(in))
	for _, l := range in {
		out = append(out, l.toLine())
	}
	return out
}

// CreateRequest is the body of POST /journals and POST /journals/preview.
// Header rules are enforced by the journal package so every failure is
// reported together; only wire shapes are checked here.
type CreateRequest struct {
	JournalNumber  string        `json:"journalNumber"`
	EntryDate      string        `json:"entryDate" validate:"required,datetime=2006-01-02"`
	EntryType      string        `json:"entryType"`
	SourceType     string        `json:"sourceType"`
	FiscalPeriodID string        `json:"fiscalPeriodId"`
	Currency       string        `json:"currency"`
	Description    string        `json:"description,omitempty"`
	Lines          []LineRequest `json:"lines" validate:"dive"`
}

// Input converts the request into a domain candidate. Empty entry and source
// types default to standard and manual.
func (r CreateRequest) Input() journal.CreateInput {
	date, _ := time.Parse(DateLayout, r.EntryDate)
	entryType := journal.EntryType(r.EntryType)
	if entryType == "" {
		entryType = journal.EntryTypeStandard
	}
	sourceType := journal.SourceType(r.SourceType)
	if sourceType == "" {
		sourceType = journal.SourceManual
	}
	return journal.CreateInput{
		Header: journal.Header{
			JournalNumber:  r.JournalNumber,
			EntryDate:      date,
			EntryType:      entryType,
			SourceType:     sourceType,
			FiscalPeriodID: r.FiscalPeriodID,
			Currency:       r.Currency,
			Description:    r.Description,
		},
		Lines: toLines(r.Lines),
	}
}

// UpdateRequest edits a draft. Absent fields are kept; lines are replaced
// only when the lines member is present.
type UpdateRequest struct {
	ExpectedVersion int64          `json:"expectedVersion" validate:"gte=0"`
	JournalNumber   *string        `json:"journalNumber,omitempty"`
	EntryDate       *string        `json:"entryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EntryType       *string        `json:"entryType,omitempty"`
	SourceType      *string        `json:"sourceType,omitempty"`
	FiscalPeriodID  *string        `json:"fiscalPeriodId,omitempty"`
	Currency        *string        `json:"currency,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Lines           *[]LineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

func (r UpdateRequest) toInput() journal.UpdateInput {
	in := journal.UpdateInput{
		JournalNumber:  r.JournalNumber,
		FiscalPeriodID: r.FiscalPeriodID,
		Currency:       r.Currency,
		Description:    r.Description,
	}
	if r.EntryDate != nil {
		date, _ := time.Parse(DateLayout, *r.EntryDate)
		in.EntryDate = &date
	}
	if r.EntryType != nil {
		t := journal.EntryType(*r.EntryType)
		in.EntryType = &t
	}
	if r.SourceType != nil {
		t := journal.SourceType(*r.SourceType)
		in.SourceType = &t
	}
	if r.Lines != nil {
		in.Lines = toLines(*r.Lines)
		in.ReplaceLines = true
	}
	return in
}

// AddLineRequest appends one line to a draft.
type AddLineRequest struct {
	ExpectedVersion int64       `json:"expectedVersion" validate:"gte=0"`
	Line            LineRequest `json:"line"`
}

// PostRequest finalises a draft.
type PostRequest struct {
	ExpectedVersion int64 `json:"expectedVersion" validate:"gte=0"`
}

// VoidRequest voids a posted entry.
type VoidRequest struct {
	ExpectedVersion int64  `json:"expectedVersion" validate:"gte=0"`
	Reason          string `json:"reason" validate:"required,max=500"`
}

// ReverseRequest creates the offsetting draft of a posted entry.
type ReverseRequest struct {
	JournalNumber  string `json:"journalNumber,omitempty" validate:"max=64"`
	EntryDate      string `json:"entryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FiscalPeriodID string `json:"fiscalPeriodId,omitempty" validate:"max=64"`
	Description    string `json:"description,omitempty" validate:"max=500"`
}

func (r ReverseRequest) toInput() journal.ReverseInput {
	in := journal.ReverseInput{
		JournalNumber:  r.JournalNumber,
		FiscalPeriodID: r.FiscalPeriodID,
		Description:    r.Description,
	}
	if r.EntryDate != "" {
		in.EntryDate, _ = time.Parse(DateLayout, r.EntryDate)
	}
	return in
}

// PreviewResponse reports the balance of a candidate entry alongside every
// validation failure found in it.
type PreviewResponse struct {
	journal.BalanceResult
	Valid  bool                 `json:"valid"`
	Errors []httpx.FieldProblem `json:"errors,omitempty"`
}
