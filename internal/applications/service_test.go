package applications

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	items map[uuid.UUID]*Application
}

func newMockRepository(items ...*Application) *mockRepository {
	repo := &mockRepository{items: make(map[uuid.UUID]*Application)}
	for _, a := range items {
		repo.items[a.ID] = a
	}
	return repo
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	var out []Application
	for _, a := range m.items {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, notes string) error {
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if notes != "" {
		a.Notes = notes
	}
	return nil
}

func pendingApplication() *Application {
	return &Application{
		ID:          uuid.New(),
		PropertyID:  uuid.New(),
		ApplicantID: uuid.New(),
		Status:      StatusPending,
	}
}

func TestSetStatusMovesToReview(t *testing.T) {
	a := pendingApplication()
	repo := newMockRepository(a)
	svc := NewService(repo, nil, slog.Default())

	updated, err := svc.SetStatus(context.Background(), a.ID, StatusUnderReview, "checking references")

	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, updated.Status)
	assert.Equal(t, "checking references", updated.Notes)
}

func TestSetStatusTerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []Status{StatusApproved, StatusRejected} {
		a := pendingApplication()
		a.Status = terminal
		svc := NewService(newMockRepository(a), nil, slog.Default())

		for _, target := range []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected} {
			_, err := svc.SetStatus(context.Background(), a.ID, target, "")
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s must be refused", terminal, target)
		}
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	a := pendingApplication()
	svc := NewService(newMockRepository(a), nil, slog.Default())

	_, err := svc.SetStatus(context.Background(), a.ID, "escalated", "")

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatusUnknownApplication(t *testing.T) {
	svc := NewService(newMockRepository(), nil, slog.Default())

	_, err := svc.SetStatus(context.Background(), uuid.New(), StatusApproved, "")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusNoBackwardStepFromReview(t *testing.T) {
	a := pendingApplication()
	a.Status = StatusUnderReview
	svc := NewService(newMockRepository(a), nil, slog.Default())

	_, err := svc.SetStatus(context.Background(), a.ID, StatusPending, "")

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusUnderReview, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusUnderReview, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusApproved, StatusUnderReview, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
