package console

import (
	"errors"
	"fmt"
)

// ErrBusy rejects a session operation while another is in flight.
var ErrBusy = errors.New("console: operation already in flight")

// ErrReasonRequired aborts a rejection whose reason is empty; no network call
// is made in that case.
var ErrReasonRequired = errors.New("console: rejection reason required")

// AuthenticationError covers bad credentials and console role mismatch at
// login. Surfaced inline on the login form; the session stays anonymous.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Message
}

// AuthorizationError covers 403 responses and local capability-gate denials.
// Surfaced as an access-denied state; it never invalidates the session.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Message
}

// SessionExpiredError marks a 401 received mid-session. The session is force
// reset; distinguished from AuthenticationError by context, not by payload.
type SessionExpiredError struct{}

func (e *SessionExpiredError) Error() string {
	return "session expired"
}

// TransitionError covers a failed status-update call. Surfaced as a transient
// notification; the entity list is refreshed regardless.
type TransitionError struct {
	Entity  string
	ID      string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: transition failed: %s", e.Entity, e.ID, e.Message)
}

// BulkError aggregates per-item failures of a bulk transition. Individual
// outcomes are not surfaced; items that succeeded stay transitioned.
type BulkError struct {
	Attempted int
	Failed    int
	Errors    []error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk transition: %d of %d items failed", e.Failed, e.Attempted)
}
