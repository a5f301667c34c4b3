package console

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentfolio/rentfolio/internal/maintenance"
)

// MaintenanceAPI is the maintenance lifecycle collaborator.
type MaintenanceAPI interface {
	SetMaintenanceStatus(ctx context.Context, id, status, notes string) error
	AssignTechnician(ctx context.Context, id, technicianID string) error
}

// MaintenanceWorkflow drives the maintenance request lifecycle: forward steps
// through the ordered states, cancellation, and technician assignment.
type MaintenanceWorkflow struct {
	workflowBase
	api MaintenanceAPI
}

// NewMaintenanceWorkflow constructs a MaintenanceWorkflow.
func NewMaintenanceWorkflow(session *Session, api MaintenanceAPI, notifier Notifier, reload func(ctx context.Context) error, logger *slog.Logger) *MaintenanceWorkflow {
	return &MaintenanceWorkflow{
		workflowBase: newWorkflowBase(session, notifier, reload, logger),
		api:          api,
	}
}

// NextAction returns the label and target status of the single forward step
// available from the given state. ok is false for terminal states.
func NextAction(current maintenance.Status) (label string, next maintenance.Status, ok bool) {
	next, ok = current.Next()
	if !ok {
		return "", "", false
	}
	switch next {
	case maintenance.StatusAcknowledged:
		label = "Acknowledge"
	case maintenance.StatusInProgress:
		label = "Start work"
	case maintenance.StatusCompleted:
		label = "Complete"
	}
	return label, next, true
}

// SetStatus requests a lifecycle transition for one request.
func (w *MaintenanceWorkflow) SetStatus(ctx context.Context, id string, status maintenance.Status, notes string) error {
	if err := w.authorize("maintenance.update", "maintenance.write"); err != nil {
		return err
	}
	err := w.api.SetMaintenanceStatus(ctx, id, string(status), notes)
	return w.finish(ctx, "maintenance request", id, err, fmt.Sprintf("Request marked %s", status))
}

// Advance takes the single forward step from the request's current state.
func (w *MaintenanceWorkflow) Advance(ctx context.Context, id string, current maintenance.Status, notes string) error {
	next, ok := current.Next()
	if !ok {
		return &TransitionError{Entity: "maintenance request", ID: id, Message: fmt.Sprintf("no further step from %s", current)}
	}
	return w.SetStatus(ctx, id, next, notes)
}

// Cancel moves a non-terminal request to cancelled.
func (w *MaintenanceWorkflow) Cancel(ctx context.Context, id, notes string) error {
	return w.SetStatus(ctx, id, maintenance.StatusCancelled, notes)
}

// AssignTechnician sets the technician responsible for a request.
func (w *MaintenanceWorkflow) AssignTechnician(ctx context.Context, id, technicianID string) error {
	if err := w.authorize("maintenance.update", "maintenance.write"); err != nil {
		return err
	}
	err := w.api.AssignTechnician(ctx, id, technicianID)
	return w.finish(ctx, "maintenance request", id, err, "Technician assigned")
}

// BulkSetStatus applies one lifecycle transition to every selected request.
// Items transition independently with no rollback; a partial failure is
// reported as a single aggregate error after one list reload.
func (w *MaintenanceWorkflow) BulkSetStatus(ctx context.Context, ids []string, status maintenance.Status, notes string) error {
	if err := w.authorize("maintenance.update", "maintenance.write"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	err := bulkApply(ctx, ids, func(ctx context.Context, id string) error {
		if err := w.api.SetMaintenanceStatus(ctx, id, string(status), notes); err != nil {
			return fmt.Errorf("maintenance request %s: %w", id, err)
		}
		return nil
	})
	return w.finishBulk(ctx, err, fmt.Sprintf("%d requests marked %s", len(ids), status))
}
