package console

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rentfolio/rentfolio/internal/properties"
)

// DefaultRejectReason is used when a toggle to not-approved supplies no
// reason of its own.
const DefaultRejectReason = "Listing does not meet platform standards"

// PropertiesAPI is the property moderation collaborator.
type PropertiesAPI interface {
	ApproveProperty(ctx context.Context, id string) error
	RejectProperty(ctx context.Context, id, reason string) error
}

// PropertyWorkflow drives listing moderation: approve, reject with a
// mandatory reason, and the reversible toggle between the two.
type PropertyWorkflow struct {
	workflowBase
	api PropertiesAPI
}

// NewPropertyWorkflow constructs a PropertyWorkflow. reload is invoked after
// every attempted transition so the list reflects the source of truth.
func NewPropertyWorkflow(session *Session, api PropertiesAPI, notifier Notifier, reload func(ctx context.Context) error, logger *slog.Logger) *PropertyWorkflow {
	return &PropertyWorkflow{
		workflowBase: newWorkflowBase(session, notifier, reload, logger),
		api:          api,
	}
}

// Approve moves a listing to approved.
func (w *PropertyWorkflow) Approve(ctx context.Context, id string) error {
	if err := w.authorize("properties.update", "properties.write"); err != nil {
		return err
	}
	err := w.api.ApproveProperty(ctx, id)
	return w.finish(ctx, "property", id, err, "Property approved")
}

// Reject moves a listing to not-approved. An empty reason aborts before any
// network call: nothing is sent, nothing is reloaded.
func (w *PropertyWorkflow) Reject(ctx context.Context, id, reason string) error {
	if err := w.authorize("properties.update", "properties.write"); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	err := w.api.RejectProperty(ctx, id, reason)
	return w.finish(ctx, "property", id, err, "Property rejected")
}

// ToggleApproval flips a listing between approved and not-approved. Toggling
// off an approved listing is a rejection and needs a reason; when none is
// supplied the default is used so the toggle stays a one-click action.
func (w *PropertyWorkflow) ToggleApproval(ctx context.Context, id string, current properties.ApprovalStatus, reason string) error {
	if current == properties.ApprovalApproved {
		if strings.TrimSpace(reason) == "" {
			reason = DefaultRejectReason
		}
		return w.Reject(ctx, id, reason)
	}
	return w.Approve(ctx, id)
}
