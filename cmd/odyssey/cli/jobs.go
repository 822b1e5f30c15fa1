package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-journals/jobs"
)

// JobsCLI enqueues and inspects journal jobs on behalf of an operator.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI connects a client and an inspector to the queue's Redis.
func NewJobsCLI(opts asynq.RedisClientOpt) *JobsCLI {
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases both connections and returns the first failure.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// TriggerTask builds the task for a job name. Ledger refresh needs an
// organisation and period; the other jobs ignore them.
func TriggerTask(name, orgID, periodID string) (*asynq.Task, error) {
	switch name {
	case jobs.TaskGLIntegrity:
		return jobs.NewGLIntegrityTask(), nil
	case jobs.TaskIdempotencyPurge:
		return jobs.NewIdempotencyPurgeTask(), nil
	case jobs.TaskLedgerRefresh:
		return jobs.NewLedgerRefreshTask(jobs.LedgerRefreshPayload{OrgID: orgID, PeriodID: periodID})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %q", name)
	}
}

// Trigger enqueues a job immediately.
func (c *JobsCLI) Trigger(ctx context.Context, name, orgID, periodID string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := TriggerTask(name, orgID, periodID)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// QueueStats summarises the default queue.
type QueueStats struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Paused    bool   `json:"paused"`
}

// InspectQueue reports the default queue counters.
func (c *JobsCLI) InspectQueue(context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	return queueStats(info), nil
}

func queueStats(info *asynq.QueueInfo) QueueStats {
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info == nil {
		return stats
	}
	stats.Size = info.Size
	stats.Pending = info.Pending
	stats.Active = info.Active
	stats.Scheduled = info.Scheduled
	stats.Retry = info.Retry
	stats.Archived = info.Archived
	stats.Paused = info.Paused
	return stats
}

// ListScheduled returns the first page of scheduled tasks.
func (c *JobsCLI) ListScheduled(_ context.Context, size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}
