package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	jobmetrics "github.com/odyssey-erp/odyssey-journals/internal/jobs"
)

// OpenPeriodSource lists periods that still accept postings.
type OpenPeriodSource interface {
	ListOpen(ctx context.Context) ([]periods.Period, error)
}

// PostedSource loads the posted entries of one period.
type PostedSource interface {
	Posted(ctx context.Context, orgID, periodID string) ([]journal.Entry, error)
}

// UnbalancedEntry is a posted entry that no longer passes the balance check.
type UnbalancedEntry struct {
	OrgID    string
	PeriodID string
	Number   string
	Result   journal.BalanceResult
}

// GLIntegrityJob re-runs the posting balance check over every posted entry in
// open periods. Findings are logged and counted; entries are not modified.
type GLIntegrityJob struct {
	Periods     OpenPeriodSource
	Entries     PostedSource
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	Concurrency int
}

// NewGLIntegrityJob constructs the integrity job.
func NewGLIntegrityJob(periods OpenPeriodSource, entries PostedSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Periods: periods, Entries: entries, Logger: logger, Metrics: metrics, Concurrency: 4}
}

// NewGLIntegrityTask creates the cron task.
func NewGLIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskGLIntegrity, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
}

// Handle executes the integrity check.
func (j *GLIntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	_, err := j.Run(ctx)
	return err
}

// Run checks every open period and returns the unbalanced entries found.
func (j *GLIntegrityJob) Run(ctx context.Context) (findings []UnbalancedEntry, err error) {
	if j == nil || j.Periods == nil || j.Entries == nil {
		return nil, errors.New("gl integrity: job not configured")
	}
	start := time.Now()
	tracker := j.Metrics.Track(TaskGLIntegrity)
	defer func() {
		err = tracker.End(err)
	}()
	log := logger(j.Logger).With(slog.String("job", "gl_integrity"))

	open, err := j.Periods.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	limit := j.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, p := range open {
		g.Go(func() error {
			entries, err := j.Entries.Posted(ctx, p.OrgID, p.ID)
			if err != nil {
				return err
			}
			found := checkPosted(p.OrgID, p.ID, entries)
			j.Metrics.AddUnbalanced(p.ID, len(found))
			mu.Lock()
			findings = append(findings, found...)
			mu.Unlock()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.Error("gl integrity check failed", slog.Any("error", err))
		return nil, err
	}

	for _, f := range findings {
		log.Warn("unbalanced posted entry",
			slog.String("org_id", f.OrgID),
			slog.String("period_id", f.PeriodID),
			slog.String("number", f.Number),
			slog.String("difference", f.Result.Difference.Format()))
	}
	log.Info("GL integrity check executed",
		slog.Int("periods", len(open)),
		slog.Int("unbalanced", len(findings)),
		slog.Duration("duration", time.Since(start)))
	return findings, nil
}

func checkPosted(orgID, periodID string, entries []journal.Entry) []UnbalancedEntry {
	var out []UnbalancedEntry
	for _, e := range entries {
		res := journal.CheckBalance(e.Lines)
		if res.Balanced {
			continue
		}
		out = append(out, UnbalancedEntry{OrgID: orgID, PeriodID: periodID, Number: e.JournalNumber, Result: res})
	}
	return out
}
