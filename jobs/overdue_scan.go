package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/rentfolio/rentfolio/internal/jobs"
	"github.com/rentfolio/rentfolio/internal/maintenance"
)

// OverdueLister narrows the maintenance repository to the sweep query.
type OverdueLister interface {
	ListOverdue(ctx context.Context, now time.Time) ([]maintenance.Request, error)
}

// NoticeEnqueuer submits transition notices for the requests found overdue.
type NoticeEnqueuer interface {
	EnqueueNotify(ctx context.Context, payload NotifyPayload) error
}

// OverdueScanJob sweeps maintenance requests whose scheduled date passed
// without completion and enqueues an "overdue" notice for each. Overdue is
// derived at scan time, never written back to the request.
type OverdueScanJob struct {
	Repo     OverdueLister
	Enqueuer NoticeEnqueuer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewOverdueScanJob initialises the overdue sweep handler.
func NewOverdueScanJob(repo OverdueLister, enqueuer NoticeEnqueuer, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Repo:     repo,
		Enqueuer: enqueuer,
		Logger:   logger,
		Metrics:  metrics,
		clock:    nowUTC,
	}
}

// Handle executes the sweep.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("overdue scan: handler not configured")
	}

	tracker := j.metrics().Track(TaskTypeOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	logger := j.logger()
	logger.Info("starting overdue sweep")

	requests, err := j.Repo.ListOverdue(ctx, now)
	if err != nil {
		resultErr = err
		logger.Error("sweep failed", slog.Any("error", err))
		return resultErr
	}
	j.metrics().SetOverdue(len(requests))

	if j.Enqueuer != nil {
		var group errgroup.Group
		group.SetLimit(8)
		for _, request := range requests {
			group.Go(func() error {
				return j.Enqueuer.EnqueueNotify(ctx, NotifyPayload{
					Entity: "maintenance",
					RefID:  request.ID,
					Status: "overdue",
					Note:   request.Title,
				})
			})
		}
		if err := group.Wait(); err != nil {
			resultErr = err
			logger.Error("enqueue overdue notices", slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed overdue sweep",
		slog.Int("overdue", len(requests)),
		slog.Duration("duration", time.Since(now)),
	)
	return resultErr
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeOverdueScan))
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return nowUTC()
}
