// Package handlers defines HTTP-layer error codes used across all API
// endpoints. These codes give clients a stable, machine-readable taxonomy
// that supplements human-readable messages; handlers select the most
// specific matching code and pass it to fail() with the corresponding HTTP
// status.
//
// Conventions:
//   - Codes are lowercase, snake_case, and generic unless explicitly noted.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes are reserved for business results that a status
//     alone cannot convey (e.g. an assignment refused by the datastore's
//     procedure vs. the procedure failing outright).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAssignmentRejected = "assignment_rejected"
	ErrCodeDeleteFailed       = "delete_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeUpstreamFailed     = "upstream_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
