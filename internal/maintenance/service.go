package maintenance

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Notifier dispatches transition notifications out of band.
type Notifier interface {
	TransitionNotice(ctx context.Context, entity string, refID uuid.UUID, status, note string) error
}

// Service orchestrates the maintenance lifecycle.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the maintenance service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Get fetches a single request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of requests.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Request, int, error) {
	return s.repo.List(ctx, filter)
}

// SetStatus performs a lifecycle transition, enforcing the ordered path and
// the cancellation rule.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status, notes string) (*Request, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, status) {
		return nil, ErrInvalidTransition
	}
	notes = strings.TrimSpace(notes)
	if err := s.repo.UpdateStatus(ctx, id, status, notes); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.TransitionNotice(ctx, "maintenance", id, string(status), notes); err != nil {
			s.logger.Warn("enqueue maintenance notice", slog.Any("error", err))
		}
	}

	current.Status = status
	if notes != "" {
		current.Notes = notes
	}
	return current, nil
}

// Assign sets the responsible technician. Assignment is orthogonal to status
// and allowed at any state except completed.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, technicianID uuid.UUID) (*Request, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCompleted {
		return nil, ErrAssignClosed
	}
	if err := s.repo.Assign(ctx, id, technicianID); err != nil {
		return nil, err
	}
	current.AssignedTo = &technicianID
	return current, nil
}
