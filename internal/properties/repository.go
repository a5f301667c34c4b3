package properties

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows and pages property listings.
type ListFilter struct {
	LandlordID     *uuid.UUID
	ApprovalStatus ApprovalStatus
	Page           int
	Limit          int
}

// Repository defines persistence operations for properties.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Property, error)
	List(ctx context.Context, filter ListFilter) ([]Property, int, error)
	Create(ctx context.Context, p *Property) error
	UpdateApproval(ctx context.Context, id uuid.UUID, status ApprovalStatus, reason string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status OccupancyStatus) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const propertyColumns = `id, landlord_id, title, address, monthly_rent, status,
approval_status, COALESCE(rejection_reason, ''), created_at, updated_at`

// Get fetches a property by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	return scanProperty(row)
}

// List returns a page of properties plus the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR landlord_id = $1)
AND ($2 = '' OR approval_status = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties`+where,
		filter.LandlordID, string(filter.ApprovalStatus)).Scan(&total); err != nil {
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
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties`+where+`
ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		filter.LandlordID, string(filter.ApprovalStatus), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Create inserts a new listing in pending moderation state.
func (r *PGRepository) Create(ctx context.Context, p *Property) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO properties
(id, landlord_id, title, address, monthly_rent, status, approval_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		p.ID, p.LandlordID, p.Title, p.Address, p.MonthlyRent, string(p.Status), string(p.ApprovalStatus))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateApproval sets the moderation status and rejection reason.
func (r *PGRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status ApprovalStatus, reason string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties
SET approval_status = $2, rejection_reason = NULLIF($3, ''), updated_at = NOW() WHERE id = $1`,
		id, string(status), reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the occupancy status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status OccupancyStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	var status, approval string
	err := row.Scan(&p.ID, &p.LandlordID, &p.Title, &p.Address, &p.MonthlyRent,
		&status, &approval, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = OccupancyStatus(status)
	p.ApprovalStatus = ApprovalStatus(approval)
	return &p, nil
}

var _ Repository = (*PGRepository)(nil)
