// Package maintenance implements the maintenance request lifecycle. The happy
// path is strictly ordered (submitted → acknowledged → in_progress →
// completed) with cancellation reachable from any non-terminal state.
package maintenance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/platform/httpx"
)

// Status is the lifecycle state of a maintenance request.
type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusAcknowledged, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the lifecycle has ended.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the single legal forward transition for the state. The second
// return is false for terminal states. Consoles use this to offer exactly one
// contextual action.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusSubmitted:
		return StatusAcknowledged, true
	case StatusAcknowledged:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusCompleted, true
	}
	return "", false
}

// CanTransition reports whether a lifecycle transition is legal: one step
// forward along the ordered path, or cancellation of any non-terminal state.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	next, ok := from.Next()
	return ok && to == next
}

// Request is a maintenance request against a property.
type Request struct {
	ID            uuid.UUID  `json:"id"`
	PropertyID    uuid.UUID  `json:"propertyId"`
	TenantID      uuid.UUID  `json:"tenantId"`
	Title         string     `json:"title"`
	Category      string     `json:"category,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	Status        Status     `json:"status"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Overdue reports whether the request slipped past its scheduled date without
// completing. A display computation, never stored.
func (r Request) Overdue(now time.Time) bool {
	if r.ScheduledDate == nil || r.Status == StatusCompleted {
		return false
	}
	return r.ScheduledDate.Before(now)
}

var (
	// ErrNotFound indicates the request does not exist.
	ErrNotFound = fmt.Errorf("maintenance request: %w", httpx.ErrNotFound)
	// ErrInvalidTransition indicates an illegal lifecycle transition.
	ErrInvalidTransition = fmt.Errorf("maintenance lifecycle: %w", httpx.ErrInvalidState)
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = fmt.Errorf("unknown maintenance status: %w", httpx.ErrValidation)
	// ErrAssignClosed indicates assignment to a completed request.
	ErrAssignClosed = fmt.Errorf("cannot assign a completed request: %w", httpx.ErrInvalidState)
)
