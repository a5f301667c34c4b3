package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows and pages maintenance listings.
type ListFilter struct {
	PropertyID *uuid.UUID
	Status     Status
	Page       int
	Limit      int
}

// Repository defines persistence operations for maintenance requests.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, notes string) error
	Assign(ctx context.Context, id uuid.UUID, technicianID uuid.UUID) error
	ListOverdue(ctx context.Context, now time.Time) ([]Request, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, property_id, tenant_id, title, COALESCE(category, ''), COALESCE(priority, ''),
status, assigned_to, scheduled_date, COALESCE(notes, ''), created_at, updated_at`

// Get fetches a request by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM maintenance_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// List returns a page of requests plus the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Request, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR property_id = $1) AND ($2 = '' OR status = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_requests`+where,
		filter.PropertyID, string(filter.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM maintenance_requests`+where+`
ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		filter.PropertyID, string(filter.Status), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *req)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the lifecycle status and notes.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, notes string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE maintenance_requests
SET status = $2, notes = NULLIF($3, ''), updated_at = NOW() WHERE id = $1`,
		id, string(status), notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign sets the responsible technician.
func (r *PGRepository) Assign(ctx context.Context, id uuid.UUID, technicianID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE maintenance_requests
SET assigned_to = $2, updated_at = NOW() WHERE id = $1`, id, technicianID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOverdue returns open requests whose scheduled date has passed.
func (r *PGRepository) ListOverdue(ctx context.Context, now time.Time) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM maintenance_requests
WHERE scheduled_date < $1 AND status NOT IN ('completed', 'cancelled')
ORDER BY scheduled_date ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	var status string
	err := row.Scan(&req.ID, &req.PropertyID, &req.TenantID, &req.Title, &req.Category, &req.Priority,
		&status, &req.AssignedTo, &req.ScheduledDate, &req.Notes, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	req.Status = Status(status)
	return &req, nil
}

var _ Repository = (*PGRepository)(nil)
