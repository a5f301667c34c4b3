// Package applications implements the rental application review workflow.
package applications

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/platform/httpx"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a review transition is legal. Review is
// optional: pending may jump straight to an outcome. Outcomes are terminal;
// the server is the enforcer of that, not the consoles.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusUnderReview || to == StatusApproved || to == StatusRejected
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	}
	return false
}

// Application is a tenant's rental application.
type Application struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"propertyId"`
	ApplicantID uuid.UUID `json:"applicantId"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var (
	// ErrNotFound indicates the application does not exist.
	ErrNotFound = fmt.Errorf("application: %w", httpx.ErrNotFound)
	// ErrInvalidTransition indicates an illegal review transition.
	ErrInvalidTransition = fmt.Errorf("application review: %w", httpx.ErrInvalidState)
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = fmt.Errorf("unknown application status: %w", httpx.ErrValidation)
)
