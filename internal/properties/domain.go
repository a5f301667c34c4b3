// Package properties implements the property listing module and its approval
// workflow. Moderation approval and occupancy status are independent axes: a
// property can be approved yet occupied, or pending moderation yet available.
package properties

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/platform/httpx"
)

// ApprovalStatus is the moderation state of a listing.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "not_approved"
)

// Valid reports whether the value is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// CanTransitionApproval reports whether a moderation transition is legal.
// Approval is a reversible toggle: pending moves to either outcome, and each
// outcome can move to the other. Nothing returns to pending.
func CanTransitionApproval(from, to ApprovalStatus) bool {
	if to != ApprovalApproved && to != ApprovalRejected {
		return false
	}
	return from != to
}

// OccupancyStatus is the operational state of a listing, orthogonal to
// moderation.
type OccupancyStatus string

const (
	OccupancyAvailable OccupancyStatus = "available"
	OccupancyOccupied  OccupancyStatus = "occupied"
	OccupancyPending   OccupancyStatus = "pending"
)

// Valid reports whether the value is a known occupancy status.
func (s OccupancyStatus) Valid() bool {
	switch s {
	case OccupancyAvailable, OccupancyOccupied, OccupancyPending:
		return true
	}
	return false
}

// Property is a rental listing.
type Property struct {
	ID              uuid.UUID       `json:"id"`
	LandlordID      uuid.UUID       `json:"landlordId"`
	Title           string          `json:"title"`
	Address         string          `json:"address"`
	MonthlyRent     float64         `json:"monthlyRent"`
	Status          OccupancyStatus `json:"status"`
	ApprovalStatus  ApprovalStatus  `json:"approvalStatus"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

var (
	// ErrNotFound indicates the property does not exist.
	ErrNotFound = fmt.Errorf("property: %w", httpx.ErrNotFound)
	// ErrDuplicate indicates a listing already exists at the address.
	ErrDuplicate = fmt.Errorf("property address already listed: %w", httpx.ErrDuplicate)
	// ErrInvalidTransition indicates an illegal approval transition.
	ErrInvalidTransition = fmt.Errorf("property approval: %w", httpx.ErrInvalidState)
	// ErrReasonRequired indicates a rejection without a reason.
	ErrReasonRequired = fmt.Errorf("rejection reason required: %w", httpx.ErrValidation)
	// ErrInvalidStatus indicates an unknown occupancy status.
	ErrInvalidStatus = fmt.Errorf("unknown property status: %w", httpx.ErrValidation)
)
