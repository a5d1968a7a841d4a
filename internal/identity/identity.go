// Package identity abstracts the external identity provider that issues and
// verifies caller credentials and owns authentication identities. The
// production implementation is Firebase Auth; the interface exists so the
// coordinator and middleware can be exercised against fakes.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned by VerifyToken for a bad, missing, or expired
// credential. Callers map it to an Unauthorized outcome before any side
// effect is applied.
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is the verified subject of a caller token.
type Principal struct {
	// UID is the identity-provider subject identifier.
	UID string
	// Email is the verified email claim, when present.
	Email string
	// Claims carries any custom claims attached to the token (e.g. role).
	Claims map[string]any
}

// Role returns the "role" custom claim, or "" when absent.
func (p *Principal) Role() string {
	if p == nil || p.Claims == nil {
		return ""
	}
	if s, ok := p.Claims["role"].(string); ok {
		return s
	}
	return ""
}

// Provider is the identity-provider contract the core consumes.
//
// Implementations must be safe for concurrent use and must honor the provided
// context for cancellation and timeouts.
type Provider interface {
	// VerifyToken validates a bearer credential and returns its principal.
	// Invalid or expired tokens yield ErrInvalidToken; any other error is a
	// structural provider failure.
	VerifyToken(ctx context.Context, token string) (*Principal, error)

	// DeleteIdentity removes the identity-provider account for uid. Deleting
	// an already-absent identity is a provider error surfaced to the caller;
	// the coordinator decides whether that failure is fatal.
	DeleteIdentity(ctx context.Context, uid string) error
}
