package properties

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	items map[uuid.UUID]*Property
}

func newMockRepository(items ...*Property) *mockRepository {
	repo := &mockRepository{items: make(map[uuid.UUID]*Property)}
	for _, p := range items {
		repo.items[p.ID] = p
	}
	return repo
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	var out []Property
	for _, p := range m.items {
		if filter.LandlordID != nil && p.LandlordID != *filter.LandlordID {
			continue
		}
		if filter.ApprovalStatus != "" && p.ApprovalStatus != filter.ApprovalStatus {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, p *Property) error {
	for _, existing := range m.items {
		if existing.Address == p.Address {
			return ErrDuplicate
		}
	}
	copied := *p
	m.items[p.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status ApprovalStatus, reason string) error {
	p, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	p.ApprovalStatus = status
	p.RejectionReason = reason
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status OccupancyStatus) error {
	p, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

type mockNotifier struct {
	notices []string
}

func (m *mockNotifier) TransitionNotice(ctx context.Context, entity string, refID uuid.UUID, status, note string) error {
	m.notices = append(m.notices, entity+":"+status)
	return nil
}

func pendingProperty() *Property {
	return &Property{
		ID:             uuid.New(),
		LandlordID:     uuid.New(),
		Title:          "Sunny two-bed",
		Address:        "12 Elm St",
		MonthlyRent:    1450,
		Status:         OccupancyPending,
		ApprovalStatus: ApprovalPending,
	}
}

func newTestService(repo Repository, notifier Notifier) *Service {
	return NewService(repo, nil, notifier, slog.Default())
}

func TestApprovePendingProperty(t *testing.T) {
	p := pendingProperty()
	repo := newMockRepository(p)
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	updated, err := svc.Approve(context.Background(), uuid.New(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, updated.ApprovalStatus)
	assert.Empty(t, updated.RejectionReason)
	assert.Equal(t, []string{"property:approved"}, notifier.notices)
}

func TestApproveIsIdempotentRefusal(t *testing.T) {
	p := pendingProperty()
	p.ApprovalStatus = ApprovalApproved
	repo := newMockRepository(p)
	svc := newTestService(repo, nil)

	_, err := svc.Approve(context.Background(), uuid.New(), p.ID)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	p := pendingProperty()
	repo := newMockRepository(p)
	svc := newTestService(repo, nil)

	_, err := svc.Reject(context.Background(), uuid.New(), p.ID, "  ")

	assert.ErrorIs(t, err, ErrReasonRequired)
	stored, getErr := repo.Get(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, ApprovalPending, stored.ApprovalStatus, "refused rejection leaves state untouched")
}

func TestRejectStoresReason(t *testing.T) {
	p := pendingProperty()
	repo := newMockRepository(p)
	svc := newTestService(repo, nil)

	updated, err := svc.Reject(context.Background(), uuid.New(), p.ID, "missing photos")

	require.NoError(t, err)
	assert.Equal(t, ApprovalRejected, updated.ApprovalStatus)
	assert.Equal(t, "missing photos", updated.RejectionReason)
}

func TestApprovalIsReversible(t *testing.T) {
	p := pendingProperty()
	repo := newMockRepository(p)
	svc := newTestService(repo, nil)
	actor := uuid.New()

	_, err := svc.Approve(context.Background(), actor, p.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), actor, p.ID, "complaint upheld")
	require.NoError(t, err)
	assert.Equal(t, ApprovalRejected, rejected.ApprovalStatus)

	approved, err := svc.Approve(context.Background(), actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, approved.ApprovalStatus)
}

func TestApproveUnknownProperty(t *testing.T) {
	svc := newTestService(newMockRepository(), nil)

	_, err := svc.Approve(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidatesAndDetectsDuplicates(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	landlord := uuid.New()

	created, err := svc.Create(context.Background(), CreateInput{
		LandlordID:  landlord,
		Title:       "Sunny two-bed",
		Address:     "12 Elm St",
		MonthlyRent: 1450,
	})
	require.NoError(t, err)
	assert.Equal(t, ApprovalPending, created.ApprovalStatus)
	assert.Equal(t, OccupancyPending, created.Status)

	_, err = svc.Create(context.Background(), CreateInput{
		LandlordID:  landlord,
		Title:       "Sunny two-bed again",
		Address:     "12 Elm St",
		MonthlyRent: 1500,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(context.Background(), CreateInput{LandlordID: landlord, Title: " ", Address: "x"})
	assert.Error(t, err)
}

func TestSetOccupancy(t *testing.T) {
	p := pendingProperty()
	repo := newMockRepository(p)
	svc := newTestService(repo, nil)

	require.NoError(t, svc.SetOccupancy(context.Background(), p.ID, OccupancyOccupied))
	stored, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, OccupancyOccupied, stored.Status)
	assert.Equal(t, ApprovalPending, stored.ApprovalStatus, "occupancy change never touches moderation")

	assert.ErrorIs(t, svc.SetOccupancy(context.Background(), p.ID, "demolished"), ErrInvalidStatus)
}

func TestCanTransitionApprovalTable(t *testing.T) {
	cases := []struct {
		from, to ApprovalStatus
		want     bool
	}{
		{ApprovalPending, ApprovalApproved, true},
		{ApprovalPending, ApprovalRejected, true},
		{ApprovalApproved, ApprovalRejected, true},
		{ApprovalRejected, ApprovalApproved, true},
		{ApprovalApproved, ApprovalApproved, false},
		{ApprovalRejected, ApprovalRejected, false},
		{ApprovalApproved, ApprovalPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransitionApproval(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
