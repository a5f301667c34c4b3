package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	jobmetrics "github.com/rentfolio/rentfolio/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNotify delivers a status-transition notice.
	TaskTypeNotify = "notify:transition"
	// TaskTypeOverdueScan sweeps maintenance requests past their scheduled date.
	TaskTypeOverdueScan = "maintenance:overdue_scan"
)

// NotifyPayload describes one status-transition notice.
type NotifyPayload struct {
	Entity string    `json:"entity"`
	RefID  uuid.UUID `json:"refId"`
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
}

// NewNotifyTask constructs an Asynq task for a transition notice.
func NewNotifyTask(payload NotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotify, data), nil
}

// NewOverdueScanTask constructs the overdue sweep task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// NotifyJob persists transition notices into the notifications feed.
type NotifyJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics

	printer *message.Printer
}

// NewNotifyJob initialises the notice handler.
func NewNotifyJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotifyJob {
	return &NotifyJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		printer: message.NewPrinter(language.English),
	}
}

// Handle processes TaskTypeNotify tasks.
func (j *NotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("notify: handler not configured")
	}
	var payload NotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Entity == "" || payload.RefID == uuid.Nil || payload.Status == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeNotify)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	body := j.message(payload)
	if j.Pool != nil {
		_, err := j.Pool.Exec(ctx, `INSERT INTO notifications (id, entity, ref_id, status, note, body, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NOW())`,
			uuid.New(), payload.Entity, payload.RefID, payload.Status, payload.Note, body)
		if err != nil {
			resultErr = err
			j.logger().Error("persist notice", slog.Any("error", err))
			return resultErr
		}
	}

	j.metrics().AddNotifications(payload.Entity, payload.Status, 1)
	j.logger().Info("notice delivered",
		slog.String("entity", payload.Entity),
		slog.String("ref_id", payload.RefID.String()),
		slog.String("status", payload.Status),
	)
	return resultErr
}

func (j *NotifyJob) message(payload NotifyPayload) string {
	p := j.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	if payload.Note != "" {
		return p.Sprintf("Your %s is now %s: %s", payload.Entity, payload.Status, payload.Note)
	}
	return p.Sprintf("Your %s is now %s", payload.Entity, payload.Status)
}

func (j *NotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeNotify))
	}
	return slog.Default().With(slog.String("job", TaskTypeNotify))
}

func (j *NotifyJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

func nowUTC() time.Time {
	return time.Now().UTC()
}
