package journal_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
)

var (
	alice = journal.Actor{OrgID: "org-1", UserID: "alice"}
	fixed = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
)

type accountSet map[string]bool

func (a accountSet) AccountExists(_ context.Context, _ string, accountID string) (bool, error) {
	return a[accountID], nil
}

func openPeriods() journal.PeriodLookup {
	return journal.PeriodLookupFunc(func(context.Context, string) (bool, error) { return false, nil })
}

func newWorkflow(periods journal.PeriodLookup) *journal.Workflow {
	wf := journal.NewWorkflow(periods, accountSet{"1100": true, "2100": true, "4000": true})
	wf.WithNow(func() time.Time { return fixed })
	return wf
}

func sampleInput() journal.CreateInput {
	return journal.CreateInput{
		Header: journal.Header{
			JournalNumber:  "JE-0001",
			EntryDate:      fixed,
			EntryType:      journal.EntryTypeStandard,
			SourceType:     journal.SourceManual,
			FiscalPeriodID: "2026-03",
			Currency:       "usd",
			Description:    "March accrual",
		},
		Lines: []journal.Line{debit("1100", "100.00"), credit("4000", "60.00"), credit("2100", "40.00")},
	}
}

func createDraft(t *testing.T, wf *journal.Workflow) journal.Entry {
	t.Helper()
	entry, err := wf.Create(context.Background(), alice, sampleInput())
	require.NoError(t, err)
	return entry
}

func TestCreateReturnsNumberedDraft(t *testing.T) {
	entry := createDraft(t, newWorkflow(openPeriods()))

	assert.Equal(t, journal.StatusDraft, entry.Status)
	assert.Equal(t, "USD", entry.Currency)
	assert.Equal(t, int64(1), entry.Version)
	assert.Equal(t, "org-1", entry.OrgID)
	assert.Equal(t, "alice", entry.CreatedBy)
	assert.Equal(t, fixed, entry.CreatedAt)
	require.Len(t, entry.Lines, 3)
	for i, line := range entry.Lines {
		assert.Equal(t, i+1, line.LineNumber)
		assert.Equal(t, "USD", line.Currency)
	}
}

func TestCreateAllowsUnbalancedDraft(t *testing.T) {
	in := sampleInput()
	in.Lines = []journal.Line{debit("1100", "100.00")}
	entry, err := newWorkflow(openPeriods()).Create(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusDraft, entry.Status)
}

func TestCreateReportsHeaderAndLineErrorsTogether(t *testing.T) {
	in := sampleInput()
	in.JournalNumber = ""
	in.EntryType = "bogus"
	in.Lines[1].LedgerAccountID = ""

	_, err := newWorkflow(openPeriods()).Create(context.Background(), alice, in)
	require.Error(t, err)
	require.ErrorIs(t, err, journal.ErrInvalidHeader)
	require.ErrorIs(t, err, journal.ErrMissingAccount)

	var ve *journal.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]string{}
	for _, e := range ve.Errors {
		var fe *journal.FieldError
		if errors.As(e, &fe) {
			fields[fe.Field] = fe.Rule
		}
	}
	assert.Equal(t, "required", fields["journalNumber"])
	assert.Equal(t, "oneof", fields["entryType"])
}

func TestCreateRejectsUnknownAccount(t *testing.T) {
	in := sampleInput()
	in.Lines[2].LedgerAccountID = "9999"
	_, err := newWorkflow(openPeriods()).Create(context.Background(), alice, in)
	require.ErrorIs(t, err, journal.ErrMissingAccount)

	var ve *journal.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.LineErrors(), 1)
	assert.Equal(t, 3, ve.LineErrors()[0].LineNumber)
}

func TestCreateRequiresActor(t *testing.T) {
	_, err := newWorkflow(openPeriods()).Create(context.Background(), journal.Actor{OrgID: "org-1"}, sampleInput())
	require.ErrorIs(t, err, journal.ErrActorRequired)
}

func TestClosedPeriodBlocksEveryMutation(t *testing.T) {
	ctx := context.Background()
	draft := createDraft(t, newWorkflow(openPeriods()))

	ctrl := gomock.NewController(t)
	periods := NewMockPeriodLookup(ctrl)
	periods.EXPECT().IsPeriodClosed(gomock.Any(), "2026-03").Return(true, nil).Times(4)
	wf := newWorkflow(periods)

	_, err := wf.Create(ctx, alice, sampleInput())
	require.ErrorIs(t, err, journal.ErrPeriodClosed)

	memo := "changed"
	_, err = wf.Update(ctx, alice, draft, journal.UpdateInput{Description: &memo})
	require.ErrorIs(t, err, journal.ErrPeriodClosed)

	_, err = wf.Post(ctx, alice, draft)
	require.ErrorIs(t, err, journal.ErrPeriodClosed)

	require.ErrorIs(t, wf.Delete(ctx, alice, draft), journal.ErrPeriodClosed)

	assert.Equal(t, journal.StatusDraft, draft.Status)
	assert.Equal(t, int64(1), draft.Version)
	assert.Equal(t, "March accrual", draft.Description)
}

func TestPeriodIsAskedOnEveryCall(t *testing.T) {
	ctx := context.Background()
	draft := createDraft(t, newWorkflow(openPeriods()))

	ctrl := gomock.NewController(t)
	periods := NewMockPeriodLookup(ctrl)
	gomock.InOrder(
		periods.EXPECT().IsPeriodClosed(gomock.Any(), "2026-03").Return(false, nil),
		periods.EXPECT().IsPeriodClosed(gomock.Any(), "2026-03").Return(true, nil),
	)
	wf := newWorkflow(periods)

	memo := "first"
	_, err := wf.Update(ctx, alice, draft, journal.UpdateInput{Description: &memo})
	require.NoError(t, err)

	_, err = wf.Post(ctx, alice, draft)
	require.ErrorIs(t, err, journal.ErrPeriodClosed)
}

func TestPeriodLookupFailurePassesThrough(t *testing.T) {
	boom := errors.New("period service unavailable")
	ctrl := gomock.NewController(t)
	periods := NewMockPeriodLookup(ctrl)
	periods.EXPECT().IsPeriodClosed(gomock.Any(), gomock.Any()).Return(false, boom)

	_, err := newWorkflow(periods).Create(context.Background(), alice, sampleInput())
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, journal.ErrPeriodClosed)
}

func TestMovingToAnotherPeriodChecksBoth(t *testing.T) {
	ctx := context.Background()
	draft := createDraft(t, newWorkflow(openPeriods()))

	ctrl := gomock.NewController(t)
	periods := NewMockPeriodLookup(ctrl)
	periods.EXPECT().IsPeriodClosed(gomock.Any(), "2026-03").Return(false, nil)
	periods.EXPECT().IsPeriodClosed(gomock.Any(), "2026-02").Return(true, nil)

	target := "2026-02"
	_, err := newWorkflow(periods).Update(ctx, alice, draft, journal.UpdateInput{FiscalPeriodID: &target})
	require.ErrorIs(t, err, journal.ErrPeriodClosed)
}

func TestNilPeriodLookup(t *testing.T) {
	err := journal.AssertPeriodOpen(context.Background(), nil, "2026-03")
	require.ErrorIs(t, err, journal.ErrPeriodLookupMissing)
}

func TestUpdateDraft(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)

	memo := "revised"
	updated, err := wf.Update(ctx, alice, draft, journal.UpdateInput{
		Description:  &memo,
		ReplaceLines: true,
		Lines:        []journal.Line{debit("1100", "25"), credit("4000", "25")},
	})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Description)
	assert.Len(t, updated.Lines, 2)
	assert.Equal(t, int64(2), updated.Version)
	assert.Len(t, draft.Lines, 3, "original snapshot untouched")

	number := "JE-0002"
	_, err = wf.Update(ctx, alice, draft, journal.UpdateInput{JournalNumber: &number})
	require.ErrorIs(t, err, journal.ErrJournalNumberImmutable)
}

func TestAddAndRemoveLine(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)

	added, err := wf.AddLine(ctx, alice, draft, credit("2100", "5"))
	require.NoError(t, err)
	require.Len(t, added.Lines, 4)
	assert.Equal(t, 4, added.Lines[3].LineNumber)

	removed, err := wf.RemoveLine(ctx, alice, added, 2)
	require.NoError(t, err)
	require.Len(t, removed.Lines, 3)
	for i, line := range removed.Lines {
		assert.Equal(t, i+1, line.LineNumber)
	}
	assert.Equal(t, "2100", removed.Lines[1].LedgerAccountID)

	_, err = wf.AddLine(ctx, alice, draft, journal.Line{LedgerAccountID: "1100"})
	require.ErrorIs(t, err, journal.ErrBothAmountsZero)
}

func TestPostBalancedDraft(t *testing.T) {
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)

	posted, err := wf.Post(context.Background(), alice, draft)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusPosted, posted.Status)
	assert.Equal(t, "alice", posted.PostedBy)
	require.NotNil(t, posted.PostedAt)
	assert.Equal(t, fixed, *posted.PostedAt)
	assert.Equal(t, journal.StatusDraft, draft.Status)
}

func TestPostRejectsUnbalancedAndShortEntries(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())

	in := sampleInput()
	in.Lines = []journal.Line{debit("1100", "100.00"), credit("4000", "99.99")}
	draft, err := wf.Create(ctx, alice, in)
	require.NoError(t, err)
	_, err = wf.Post(ctx, alice, draft)
	require.ErrorIs(t, err, journal.ErrUnbalanced)

	in.Lines = []journal.Line{debit("1100", "100.00")}
	draft, err = wf.Create(ctx, alice, in)
	require.NoError(t, err)
	_, err = wf.Post(ctx, alice, draft)
	require.ErrorIs(t, err, journal.ErrMinimumLineCount)
	assert.Equal(t, journal.StatusDraft, draft.Status)
}

func TestAmountsFinerThanStorageScaleNeverPost(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())

	in := sampleInput()
	in.Lines = []journal.Line{debit("1100", "100.00005"), credit("4000", "100")}
	_, err := wf.Create(ctx, alice, in)
	require.ErrorIs(t, err, journal.ErrAmountPrecision)

	draft := createDraft(t, wf)
	draft.Lines[0].DebitAmount = money.MustParse("100.00005")
	draft.Lines[1].CreditAmount = money.MustParse("60.00")
	_, err = wf.Post(ctx, alice, draft)
	require.ErrorIs(t, err, journal.ErrAmountPrecision)
}

func TestPostedEntryIsImmutable(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	posted, err := wf.Post(ctx, alice, createDraft(t, wf))
	require.NoError(t, err)

	before, err := json.Marshal(posted)
	require.NoError(t, err)

	memo := "tamper"
	_, err = wf.Update(ctx, alice, posted, journal.UpdateInput{Description: &memo})
	require.ErrorIs(t, err, journal.ErrEntryNotEditable)
	_, err = wf.AddLine(ctx, alice, posted, debit("1100", "1"))
	require.ErrorIs(t, err, journal.ErrEntryNotEditable)
	_, err = wf.RemoveLine(ctx, alice, posted, 1)
	require.ErrorIs(t, err, journal.ErrEntryNotEditable)
	_, err = wf.Post(ctx, alice, posted)
	require.ErrorIs(t, err, journal.ErrEntryNotEditable)
	require.ErrorIs(t, wf.Delete(ctx, alice, posted), journal.ErrEntryNotEditable)

	after, err := json.Marshal(posted)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestVoid(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)

	_, err := wf.Void(alice, draft, "mistake")
	require.ErrorIs(t, err, journal.ErrInvalidTransition)

	posted, err := wf.Post(ctx, alice, draft)
	require.NoError(t, err)

	voided, err := wf.Void(alice, posted, "  duplicate  ")
	require.NoError(t, err)
	assert.Equal(t, journal.StatusVoided, voided.Status)
	assert.Equal(t, "duplicate", voided.VoidReason)
	assert.Equal(t, "alice", voided.VoidedBy)
	assert.Equal(t, posted.Version+1, voided.Version)

	_, err = wf.Void(alice, voided, "again")
	require.ErrorIs(t, err, journal.ErrEntryTerminal)
	_, err = wf.Post(ctx, alice, voided)
	require.ErrorIs(t, err, journal.ErrEntryTerminal)
	require.ErrorIs(t, wf.Delete(ctx, alice, voided), journal.ErrEntryTerminal)
	_, err = wf.Reverse(ctx, alice, voided, journal.ReverseInput{JournalNumber: "JE-R1"})
	require.ErrorIs(t, err, journal.ErrEntryTerminal)
}

func TestOtherOrganisationIsForbidden(t *testing.T) {
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)
	mallory := journal.Actor{OrgID: "org-2", UserID: "mallory"}

	_, err := wf.Post(context.Background(), mallory, draft)
	require.ErrorIs(t, err, journal.ErrForbidden)
}

func TestReverseSwapsSides(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	draft := createDraft(t, wf)

	_, err := wf.Reverse(ctx, alice, draft, journal.ReverseInput{JournalNumber: "JE-R1"})
	require.ErrorIs(t, err, journal.ErrInvalidTransition)

	posted, err := wf.Post(ctx, alice, draft)
	require.NoError(t, err)

	reversal, err := wf.Reverse(ctx, alice, posted, journal.ReverseInput{JournalNumber: "JE-R1"})
	require.NoError(t, err)
	assert.Equal(t, journal.StatusDraft, reversal.Status)
	assert.Equal(t, journal.EntryTypeReversing, reversal.EntryType)
	assert.Equal(t, "Reversal of JE-0001", reversal.Description)
	require.NotNil(t, reversal.ReversalOf)
	assert.Equal(t, posted.ID, *reversal.ReversalOf)
	require.Len(t, reversal.Lines, len(posted.Lines))
	for i := range posted.Lines {
		assert.True(t, reversal.Lines[i].CreditAmount.Equal(posted.Lines[i].DebitAmount))
		assert.True(t, reversal.Lines[i].DebitAmount.Equal(posted.Lines[i].CreditAmount))
	}

	res := journal.CheckBalance(reversal.Lines)
	assert.True(t, res.Balanced)
	assert.True(t, res.TotalDebits.Equal(money.MustParse("100")))
}

func TestReverseDefaultsNumber(t *testing.T) {
	ctx := context.Background()
	wf := newWorkflow(openPeriods())
	posted, err := wf.Post(ctx, alice, createDraft(t, wf))
	require.NoError(t, err)

	reversal, err := wf.Reverse(ctx, alice, posted, journal.ReverseInput{FiscalPeriodID: "2026-04"})
	require.NoError(t, err)
	assert.Equal(t, "JE-0001-REV", reversal.JournalNumber)
	assert.Equal(t, "2026-04", reversal.FiscalPeriodID)
	assert.Equal(t, posted.EntryDate, reversal.EntryDate)
}
