package identity

import (
	"context"
	"strings"
)

// Insecure is a development-only Provider used when Firebase is disabled.
// It accepts any non-empty bearer token, using the token itself as the UID.
// A token of the form "<uid>:<role>" carries a role claim, so admin routes
// stay reachable locally (e.g. "dev-admin:admin").
//
// Never enable this outside local development.
type Insecure struct{}

var _ Provider = (*Insecure)(nil)

// VerifyToken accepts any non-empty token.
func (Insecure) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	uid, role := token, ""
	if i := strings.IndexByte(token, ':'); i > 0 {
		uid, role = token[:i], token[i+1:]
	}
	p := &Principal{UID: uid}
	if role != "" {
		p.Claims = map[string]any{"role": role}
	}
	return p, nil
}

// DeleteIdentity is a no-op: there is no identity backend to clean up.
func (Insecure) DeleteIdentity(ctx context.Context, uid string) error {
	return nil
}
