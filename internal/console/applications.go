package console

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentfolio/rentfolio/internal/applications"
)

// ApplicationsAPI is the application review collaborator.
type ApplicationsAPI interface {
	SetApplicationStatus(ctx context.Context, id, status, notes string) error
}

// ApplicationWorkflow drives tenant application review, one application at a
// time or in bulk over the current selection.
type ApplicationWorkflow struct {
	workflowBase
	api ApplicationsAPI
}

// NewApplicationWorkflow constructs an ApplicationWorkflow.
func NewApplicationWorkflow(session *Session, api ApplicationsAPI, notifier Notifier, reload func(ctx context.Context) error, logger *slog.Logger) *ApplicationWorkflow {
	return &ApplicationWorkflow{
		workflowBase: newWorkflowBase(session, notifier, reload, logger),
		api:          api,
	}
}

// SetStatus requests a review transition for one application.
func (w *ApplicationWorkflow) SetStatus(ctx context.Context, id string, status applications.Status, notes string) error {
	if err := w.authorize("applications.update", "applications.write"); err != nil {
		return err
	}
	err := w.api.SetApplicationStatus(ctx, id, string(status), notes)
	return w.finish(ctx, "application", id, err, fmt.Sprintf("Application marked %s", status))
}

// BulkSetStatus applies one review transition to every selected application.
// Items transition independently: there is no rollback, and a partial failure
// is reported as a single aggregate error after one list reload.
func (w *ApplicationWorkflow) BulkSetStatus(ctx context.Context, ids []string, status applications.Status, notes string) error {
	if err := w.authorize("applications.update", "applications.write"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	err := bulkApply(ctx, ids, func(ctx context.Context, id string) error {
		if err := w.api.SetApplicationStatus(ctx, id, string(status), notes); err != nil {
			return fmt.Errorf("application %s: %w", id, err)
		}
		return nil
	})
	return w.finishBulk(ctx, err, fmt.Sprintf("%d applications marked %s", len(ids), status))
}
