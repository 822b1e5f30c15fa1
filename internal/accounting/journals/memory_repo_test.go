package journals_test

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// memoryRepo keeps entries in maps and restores a snapshot when a
// transaction callback fails.
type memoryRepo struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]journal.Entry
	periods  map[string]bool // period id -> closed
	accounts map[string]bool
	keys     map[string]bool
	audits   []internalShared.AuditLog
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		entries:  map[uuid.UUID]journal.Entry{},
		periods:  map[string]bool{"2026-03": false, "2026-04": false},
		accounts: map[string]bool{"1100": true, "2000": true, "4000": true, "5000": true},
		keys:     map[string]bool{},
	}
}

func (m *memoryRepo) closePeriod(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[id] = true
}

func (m *memoryRepo) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		out = append(out, a.Action)
	}
	return out
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memoryRepo) Get(_ context.Context, orgID string, id uuid.UUID) (journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(orgID, id)
}

func (m *memoryRepo) find(orgID string, id uuid.UUID) (journal.Entry, error) {
	e, ok := m.entries[id]
	if !ok || e.OrgID != orgID {
		return journal.Entry{}, shared.ErrJournalNotFound
	}
	return e.Clone(), nil
}

func (m *memoryRepo) List(_ context.Context, orgID string, filter journals.ListFilter) ([]journal.Entry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Entry
	for _, e := range m.entries {
		if e.OrgID != orgID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.PeriodID != "" && e.FiscalPeriodID != filter.PeriodID {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JournalNumber > out[j].JournalNumber })
	page := internalShared.NewPagination(filter.Page, filter.PerPage, len(out))
	start := page.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + page.PerPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], len(out), nil
}

func (m *memoryRepo) Posted(ctx context.Context, orgID, periodID string) ([]journal.Entry, error) {
	entries, _, err := m.List(ctx, orgID, journals.ListFilter{Status: journal.StatusPosted, PeriodID: periodID, PerPage: internalShared.MaxPerPage})
	return entries, err
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make(map[uuid.UUID]journal.Entry, len(m.entries))
	for k, v := range m.entries {
		entries[k] = v.Clone()
	}
	keys := make(map[string]bool, len(m.keys))
	for k, v := range m.keys {
		keys[k] = v
	}
	audits := len(m.audits)
	if err := fn(ctx, memoryTx{m}); err != nil {
		m.entries, m.keys, m.audits = entries, keys, m.audits[:audits]
		return err
	}
	return nil
}

type memoryTx struct {
	m *memoryRepo
}

func (t memoryTx) GetForUpdate(_ context.Context, orgID string, id uuid.UUID) (journal.Entry, error) {
	return t.m.find(orgID, id)
}

func (t memoryTx) Insert(_ context.Context, e journal.Entry) error {
	for _, existing := range t.m.entries {
		if existing.OrgID == e.OrgID && existing.JournalNumber == e.JournalNumber {
			return shared.ErrDuplicateNumber
		}
	}
	t.m.entries[e.ID] = e.Clone()
	return nil
}

func (t memoryTx) Update(_ context.Context, e journal.Entry, prevVersion int64) error {
	current, ok := t.m.entries[e.ID]
	if !ok || current.Version != prevVersion {
		return shared.ErrVersionConflict
	}
	t.m.entries[e.ID] = e.Clone()
	return nil
}

func (t memoryTx) Delete(_ context.Context, orgID string, id uuid.UUID, version int64) error {
	current, ok := t.m.entries[id]
	if !ok || current.OrgID != orgID || current.Version != version || current.Status != journal.StatusDraft {
		return shared.ErrVersionConflict
	}
	delete(t.m.entries, id)
	return nil
}

func (t memoryTx) PeriodClosed(_ context.Context, _ string, periodID string) (bool, error) {
	closed, ok := t.m.periods[periodID]
	if !ok {
		return false, shared.ErrPeriodNotFound
	}
	return closed, nil
}

func (t memoryTx) AccountExists(_ context.Context, _ string, accountID string) (bool, error) {
	return t.m.accounts[accountID], nil
}

func (t memoryTx) ClaimIdempotencyKey(_ context.Context, orgID, key string) error {
	k := orgID + "/" + key
	if t.m.keys[k] {
		return shared.ErrDuplicateRequest
	}
	t.m.keys[k] = true
	return nil
}

func (t memoryTx) RecordAudit(_ context.Context, log internalShared.AuditLog) error {
	t.m.audits = append(t.m.audits, log)
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []journals.Event
	err    error
}

func (r *recordedEvents) JournalChanged(_ context.Context, ev journals.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type recordedOutcomes struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordedOutcomes) ObserveJournalTransition(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, op+":"+outcome)
}
