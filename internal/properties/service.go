package properties

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/shared"
)

// Notifier dispatches transition notifications out of band.
type Notifier interface {
	TransitionNotice(ctx context.Context, entity string, refID uuid.UUID, status, note string) error
}

// Service orchestrates the property approval workflow.
type Service struct {
	repo       Repository
	moderation *shared.ModerationRecorder
	notifier   Notifier
	logger     *slog.Logger
}

// NewService constructs the properties service. moderation and notifier may
// be nil in tests.
func NewService(repo Repository, moderation *shared.ModerationRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, moderation: moderation, notifier: notifier, logger: logger}
}

// Get fetches a single property.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of properties.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	return s.repo.List(ctx, filter)
}

// CreateInput describes a new listing.
type CreateInput struct {
	LandlordID  uuid.UUID
	Title       string
	Address     string
	MonthlyRent float64
}

// Create registers a listing in pending moderation state.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Property, error) {
	p := &Property{
		ID:             uuid.New(),
		LandlordID:     input.LandlordID,
		Title:          strings.TrimSpace(input.Title),
		Address:        strings.TrimSpace(input.Address),
		MonthlyRent:    input.MonthlyRent,
		Status:         OccupancyPending,
		ApprovalStatus: ApprovalPending,
	}
	if p.Title == "" || p.Address == "" {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Approve transitions a listing to approved. No reason is required.
func (s *Service) Approve(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*Property, error) {
	return s.transitionApproval(ctx, actor, id, ApprovalApproved, "")
}

// Reject transitions a listing to not_approved. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, actor uuid.UUID, id uuid.UUID, reason string) (*Property, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.transitionApproval(ctx, actor, id, ApprovalRejected, reason)
}

func (s *Service) transitionApproval(ctx context.Context, actor uuid.UUID, id uuid.UUID, target ApprovalStatus, reason string) (*Property, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransitionApproval(current.ApprovalStatus, target) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateApproval(ctx, id, target, reason); err != nil {
		return nil, err
	}

	action := shared.ModerationApprove
	if target == ApprovalRejected {
		action = shared.ModerationReject
	}
	if s.moderation != nil {
		if err := s.moderation.Record(ctx, shared.ModerationLog{
			Entity:  "property",
			RefID:   id,
			ActorID: actor,
			Action:  action,
			Note:    reason,
		}); err != nil {
			s.logger.Warn("record property moderation", slog.Any("error", err))
		}
	}
	s.notify(ctx, id, string(target), reason)

	current.ApprovalStatus = target
	current.RejectionReason = reason
	return current, nil
}

// SetOccupancy updates the operational status without touching moderation.
func (s *Service) SetOccupancy(ctx context.Context, id uuid.UUID, status OccupancyStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.notify(ctx, id, string(status), "")
	return nil
}

func (s *Service) notify(ctx context.Context, id uuid.UUID, status, note string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TransitionNotice(ctx, "property", id, status, note); err != nil {
		s.logger.Warn("enqueue property notice", slog.Any("error", err))
	}
}
