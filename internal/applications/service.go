package applications

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

// Service orchestrates the application review workflow.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the applications service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Get fetches a single application.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of applications.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	return s.repo.List(ctx, filter)
}

// SetStatus performs a review transition. Terminal states reject further
// transitions here; the consoles rely on this server-side enforcement.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status, notes string) (*Application, error) {
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
		if err := s.notifier.TransitionNotice(ctx, "application", id, string(status), notes); err != nil {
			s.logger.Warn("enqueue application notice", slog.Any("error", err))
		}
	}

	current.Status = status
	if notes != "" {
		current.Notes = notes
	}
	return current, nil
}
