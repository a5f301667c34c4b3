package jobs

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfolio/rentfolio/internal/maintenance"
)

type fakeOverdueLister struct {
	requests []maintenance.Request
	err      error
}

func (f *fakeOverdueLister) ListOverdue(ctx context.Context, now time.Time) ([]maintenance.Request, error) {
	return f.requests, f.err
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	payloads []NotifyPayload
}

func (f *fakeEnqueuer) EnqueueNotify(ctx context.Context, payload NotifyPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestOverdueScanEnqueuesNoticePerRequest(t *testing.T) {
	past := time.Now().Add(-72 * time.Hour)
	lister := &fakeOverdueLister{requests: []maintenance.Request{
		{ID: uuid.New(), Title: "Leaking faucet", Status: maintenance.StatusInProgress, ScheduledDate: &past},
		{ID: uuid.New(), Title: "Broken heater", Status: maintenance.StatusAcknowledged, ScheduledDate: &past},
	}}
	enqueuer := &fakeEnqueuer{}
	job := NewOverdueScanJob(lister, enqueuer, slog.Default(), nil)

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))

	require.Len(t, enqueuer.payloads, 2)
	for _, payload := range enqueuer.payloads {
		assert.Equal(t, "maintenance", payload.Entity)
		assert.Equal(t, "overdue", payload.Status)
		assert.NotEmpty(t, payload.Note)
	}
}

func TestOverdueScanEmptySweep(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	job := NewOverdueScanJob(&fakeOverdueLister{}, enqueuer, slog.Default(), nil)

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))

	assert.Empty(t, enqueuer.payloads)
}

func TestNotifyMessageFormatting(t *testing.T) {
	job := NewNotifyJob(nil, slog.Default(), nil)

	withNote := job.message(NotifyPayload{Entity: "property", Status: "not_approved", Note: "missing photos"})
	assert.Equal(t, "Your property is now not_approved: missing photos", withNote)

	bare := job.message(NotifyPayload{Entity: "application", Status: "approved"})
	assert.Equal(t, "Your application is now approved", bare)
}
