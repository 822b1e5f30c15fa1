package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	jobmetrics "github.com/odyssey-erp/odyssey-journals/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerRefresh invalidates cached ledger views after a posting or void.
	TaskLedgerRefresh = "journal:ledger_refresh"
	// TaskGLIntegrity re-checks the balance of every posted entry in open periods.
	TaskGLIntegrity = "journal:gl_integrity"
)

// LedgerRefreshPayload identifies the period whose ledger views are stale.
type LedgerRefreshPayload struct {
	OrgID    string             `json:"org_id"`
	PeriodID string             `json:"period_id"`
	EntryID  string             `json:"entry_id"`
	Event    journals.EventType `json:"event"`
	Version  int64              `json:"version"`
}

// NewLedgerRefreshTask constructs an Asynq task.
func NewLedgerRefreshTask(payload LedgerRefreshPayload) (*asynq.Task, error) {
	if payload.OrgID == "" || payload.PeriodID == "" {
		return nil, errors.New("ledger refresh: org and period required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerRefresh, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// LedgerInvalidator drops cached views of one period.
type LedgerInvalidator interface {
	Invalidate(ctx context.Context, orgID, periodID string) error
}

// LedgerRefreshJob handles TaskLedgerRefresh.
type LedgerRefreshJob struct {
	Ledger  LedgerInvalidator
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerRefreshJob constructs the handler.
func NewLedgerRefreshJob(ledger LedgerInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerRefreshJob {
	return &LedgerRefreshJob{Ledger: ledger, Logger: logger, Metrics: metrics}
}

// Handle processes TaskLedgerRefresh tasks.
func (j *LedgerRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Ledger == nil {
		return errors.New("ledger refresh: handler not configured")
	}
	var payload LedgerRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskLedgerRefresh)
	defer func() {
		err = tracker.End(err)
	}()
	if err = j.Ledger.Invalidate(ctx, payload.OrgID, payload.PeriodID); err != nil {
		return err
	}
	logger(j.Logger).Debug("ledger views refreshed",
		slog.String("org_id", payload.OrgID),
		slog.String("period_id", payload.PeriodID),
		slog.String("event", string(payload.Event)))
	return nil
}

// Enqueuer submits tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LedgerNotifier turns committed journal events into ledger refresh tasks.
// When the queue is unavailable it invalidates the ledger inline.
type LedgerNotifier struct {
	queue    Enqueuer
	fallback LedgerInvalidator
	logger   *slog.Logger
}

// NewLedgerNotifier constructs the notifier. Either collaborator may be nil.
func NewLedgerNotifier(queue Enqueuer, fallback LedgerInvalidator, logger *slog.Logger) *LedgerNotifier {
	return &LedgerNotifier{queue: queue, fallback: fallback, logger: logger}
}

// JournalChanged implements journals.Notifier.
func (n *LedgerNotifier) JournalChanged(ctx context.Context, ev journals.Event) error {
	payload := LedgerRefreshPayload{
		OrgID:    ev.OrgID,
		PeriodID: ev.PeriodID,
		EntryID:  ev.EntryID.String(),
		Event:    ev.Type,
		Version:  ev.Version,
	}
	if n.queue != nil {
		task, err := NewLedgerRefreshTask(payload)
		if err != nil {
			return err
		}
		_, err = n.queue.EnqueueContext(ctx, task)
		if err == nil {
			return nil
		}
		logger(n.logger).Warn("ledger refresh enqueue failed, invalidating inline",
			slog.String("entry_id", payload.EntryID),
			slog.Any("error", err))
	}
	if n.fallback == nil {
		return errors.New("ledger refresh: no queue or fallback configured")
	}
	return n.fallback.Invalidate(ctx, ev.OrgID, ev.PeriodID)
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
