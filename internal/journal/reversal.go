package journal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReverseInput positions the reversing entry. Zero values fall back to the
// original entry's date and period, and to its number suffixed with -REV.
type ReverseInput struct {
	JournalNumber  string
	EntryDate      time.Time
	FiscalPeriodID string
	Description    string
}

// Reverse builds a draft that mirrors a posted entry with debits and credits
// swapped. The original is not modified.
func (w *Workflow) Reverse(ctx context.Context, actor Actor, original Entry, in ReverseInput) (Entry, error) {
	if err := actor.validate(); err != nil {
		return Entry{}, err
	}
	if original.OrgID != actor.OrgID {
		return Entry{}, ErrForbidden
	}
	switch original.Status {
	case StatusPosted:
	case StatusVoided:
		return Entry{}, ErrEntryTerminal
	default:
		return Entry{}, ErrInvalidTransition
	}

	date := in.EntryDate
	if date.IsZero() {
		date = original.EntryDate
	}
	period := in.FiscalPeriodID
	if period == "" {
		period = original.FiscalPeriodID
	}
	number := strings.TrimSpace(in.JournalNumber)
	if number == "" {
		number = original.JournalNumber + "-REV"
	}
	memo := in.Description
	if memo == "" {
		memo = fmt.Sprintf("Reversal of %s", original.JournalNumber)
	}

	reversal, err := w.Create(ctx, actor, CreateInput{
		Header: Header{
			JournalNumber:  number,
			EntryDate:      date,
			EntryType:      EntryTypeReversing,
			SourceType:     original.SourceType,
			FiscalPeriodID: period,
			Currency:       original.Currency,
			Description:    memo,
		},
		Lines: reverseLines(original.Lines),
	})
	if err != nil {
		return Entry{}, err
	}
	id := original.ID
	reversal.ReversalOf = &id
	return reversal, nil
}

func reverseLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		line.DebitAmount, line.CreditAmount = line.CreditAmount, line.DebitAmount
		out = append(out, line)
	}
	return out
}
