// Package services defines the business logic for administrative mutations,
// push dispatch, and notification read-state. This file centralizes the
// service-level error taxonomy so that callers can branch on stable values.
//
// Taxonomy:
//   - ErrUnauthorized: bad, missing, or expired caller credential. Always
//     aborts before any side effect.
//   - ErrInvalidRequest: required fields missing. Aborts before any remote
//     call; validation is all-or-nothing.
//   - ErrOfficerNotFound / ErrComplaintNotFound: referenced entity absent.
//   - UpstreamError: an identity/datastore/push provider call failed
//     structurally (network, permission). Carries the provider name and its
//     error code for operator diagnosis.
//   - DomainRejection: a well-formed negative business result (e.g.
//     "Officer unavailable") embedded in an otherwise successful provider
//     call. Distinguished from UpstreamError because it requires different
//     user messaging.
//
// Translation into HTTP statuses is performed at the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the caller credential failed verification.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRequest indicates a required field was missing from an
	// administrative operation.
	ErrInvalidRequest = errors.New("missing required fields")

	// ErrOfficerNotFound indicates the referenced officer does not exist.
	ErrOfficerNotFound = errors.New("officer not found")

	// ErrComplaintNotFound indicates the referenced complaint does not exist.
	ErrComplaintNotFound = errors.New("complaint not found")

	// ErrNotificationNotFound indicates the referenced notification does not
	// exist or is not accessible to the current officer.
	ErrNotificationNotFound = errors.New("notification not found")
)

// UpstreamError wraps a structural failure from an external collaborator.
// The provider-specific error is preserved verbatim for diagnostics.
type UpstreamError struct {
	// Provider names the failing collaborator: "identity", "datastore",
	// or "push".
	Provider string
	// Err is the provider's original error.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s provider failure: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying provider error to errors.Is/As.
func (e *UpstreamError) Unwrap() error { return e.Err }

// DomainRejection carries a well-formed negative business result returned by
// the datastore's assignment procedure. It is not a structural failure: the
// call completed and the domain said no.
type DomainRejection struct {
	// Reason is the business refusal, safe to show to users.
	Reason string
}

// Error implements the error interface.
func (e *DomainRejection) Error() string { return e.Reason }
