package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-journals/internal/jobs"
)

// TaskIdempotencyPurge drops idempotency keys past their retention.
const TaskIdempotencyPurge = "journal:idempotency_purge"

// KeyPurger deletes processed request keys. *shared.IdempotencyStore satisfies it.
type KeyPurger interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyPurgeJob keeps idempotency_keys bounded. A purged key can be
// reused by a client, so retention must outlive any client retry window.
type IdempotencyPurgeJob struct {
	Store     KeyPurger
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewIdempotencyPurgeJob constructs the purge handler.
func NewIdempotencyPurgeJob(store KeyPurger, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyPurgeJob {
	return &IdempotencyPurgeJob{Store: store, Retention: retention, Logger: logger, Metrics: metrics}
}

// NewIdempotencyPurgeTask creates the cron task.
func NewIdempotencyPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyPurge, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// Handle executes the purge.
func (j *IdempotencyPurgeJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("idempotency purge: job not configured")
	}
	if j.Retention <= 0 {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskIdempotencyPurge)
	defer func() {
		err = tracker.End(err)
	}()
	removed, err := j.Store.Cleanup(ctx, j.Retention)
	if err != nil {
		logger(j.Logger).Error("purge idempotency keys", slog.Any("error", err))
		return err
	}
	logger(j.Logger).Info("purged idempotency keys",
		slog.String("job", "idempotency_purge"),
		slog.Int64("removed", removed),
		slog.Duration("retention", j.Retention))
	return nil
}
