package journal

import "context"

//go:generate mockgen -destination=mock_period_test.go -package=journal_test . PeriodLookup

// PeriodLookup is the fiscal period service as seen by the gate.
type PeriodLookup interface {
	IsPeriodClosed(ctx context.Context, periodID string) (bool, error)
}

// PeriodLookupFunc adapts a function to PeriodLookup.
type PeriodLookupFunc func(ctx context.Context, periodID string) (bool, error)

// IsPeriodClosed calls f.
func (f PeriodLookupFunc) IsPeriodClosed(ctx context.Context, periodID string) (bool, error) {
	return f(ctx, periodID)
}

// AssertPeriodOpen asks the lookup on every call; period state is never
// cached because a period can close between form load and submit. Lookup
// failures are returned unchanged.
func AssertPeriodOpen(ctx context.Context, lookup PeriodLookup, periodID string) error {
	if lookup == nil {
		return ErrPeriodLookupMissing
	}
	closed, err := lookup.IsPeriodClosed(ctx, periodID)
	if err != nil {
		return err
	}
	if closed {
		return ErrPeriodClosed
	}
	return nil
}
