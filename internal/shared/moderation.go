package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ModerationAction enumerates moderation log actions.
type ModerationAction string

const (
	// ModerationApprove marks an approval.
	ModerationApprove ModerationAction = "APPROVE"
	// ModerationReject marks a rejection.
	ModerationReject ModerationAction = "REJECT"
	// ModerationStatusChange marks an operational status transition.
	ModerationStatusChange ModerationAction = "STATUS_CHANGE"
)

// ModerationLog is a single moderation record.
type ModerationLog struct {
	ID      int64
	Entity  string
	RefID   uuid.UUID
	ActorID uuid.UUID
	Action  ModerationAction
	Note    string
	At      time.Time
}

// ModerationRecorder persists moderation history for audited transitions.
type ModerationRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewModerationRecorder constructs a ModerationRecorder.
func NewModerationRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ModerationRecorder {
	return &ModerationRecorder{pool: pool, logger: logger}
}

// Record writes a moderation entry. Entity, actor, ref and action are required.
func (r *ModerationRecorder) Record(ctx context.Context, log ModerationLog) error {
	if r == nil {
		return errors.New("moderation recorder not initialised")
	}
	if log.Entity == "" {
		return errors.New("moderation entity required")
	}
	if log.RefID == uuid.Nil {
		return errors.New("moderation ref id required")
	}
	if log.ActorID == uuid.Nil {
		return errors.New("moderation actor required")
	}
	if log.Action == "" {
		return errors.New("moderation action required")
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO moderation_log (entity, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, '0001-01-01T00:00:00Z'::timestamptz), NOW()))`,
		log.Entity, log.RefID, log.ActorID, string(log.Action), log.Note, log.At)
	if err != nil {
		r.logger.Error("record moderation", slog.Any("error", err))
		return err
	}
	return nil
}

// List returns moderation entries for an entity reference, oldest first.
func (r *ModerationRecorder) List(ctx context.Context, entity string, ref uuid.UUID) ([]ModerationLog, error) {
	if r == nil {
		return nil, errors.New("moderation recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, entity, ref_id, actor_id, action, note, at
FROM moderation_log WHERE entity=$1 AND ref_id=$2 ORDER BY at ASC`, entity, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ModerationLog
	for rows.Next() {
		var l ModerationLog
		var action string
		if err := rows.Scan(&l.ID, &l.Entity, &l.RefID, &l.ActorID, &action, &l.Note, &l.At); err != nil {
			return nil, err
		}
		l.Action = ModerationAction(action)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
