package applications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows and pages application listings.
type ListFilter struct {
	PropertyID *uuid.UUID
	Status     Status
	Page       int
	Limit      int
}

// Repository defines persistence operations for applications.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Application, error)
	List(ctx context.Context, filter ListFilter) ([]Application, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, notes string) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const applicationColumns = `id, property_id, applicant_id, status, COALESCE(notes, ''), created_at, updated_at`

// Get fetches an application by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// List returns a page of applications plus the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR property_id = $1) AND ($2 = '' OR status = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+where,
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
	rows, err := r.pool.Query(ctx, `SELECT `+applicationColumns+` FROM applications`+where+`
ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		filter.PropertyID, string(filter.Status), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the review status and notes.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, notes string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE applications
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

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	var status string
	err := row.Scan(&a.ID, &a.PropertyID, &a.ApplicantID, &status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

var _ Repository = (*PGRepository)(nil)
