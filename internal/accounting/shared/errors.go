package shared

import "errors"

var (
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrVersionConflict indicates the caller edited a stale snapshot.
	ErrVersionConflict = errors.New("accounting: journal entry was modified concurrently")
	// ErrDuplicateNumber indicates the journal number is taken in the organisation.
	ErrDuplicateNumber = errors.New("accounting: journal number already used")
	// ErrPeriodNotFound indicates an unknown fiscal period.
	ErrPeriodNotFound = errors.New("accounting: fiscal period not found")
	// ErrAccountNotFound indicates an unknown ledger account.
	ErrAccountNotFound = errors.New("accounting: ledger account not found")
	// ErrDuplicateRequest indicates an idempotency key that was already used.
	ErrDuplicateRequest = errors.New("accounting: request already processed")
)
