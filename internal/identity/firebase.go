// Package identity – Firebase implementation.
//
// FirebaseProvider adapts the Firebase Admin SDK's auth client to the
// Provider contract. Token verification failures are normalized to
// ErrInvalidToken so the rest of the system never branches on SDK error
// strings.
package identity

import (
	"context"
	"strings"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
)

// FirebaseProvider implements Provider on top of Firebase Auth.
type FirebaseProvider struct {
	client *auth.Client
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider derives an auth client from an initialized Firebase app.
func NewFirebaseProvider(ctx context.Context, app *firebase.App) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseProvider{client: client}, nil
}

// VerifyToken validates a Firebase ID token and returns its principal.
func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	tok, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		// The SDK reports malformed, expired, and revoked tokens as plain
		// errors; all of them mean the caller is not authenticated.
		return nil, ErrInvalidToken
	}
	pr := &Principal{
		UID:    tok.UID,
		Claims: tok.Claims,
	}
	if email, ok := tok.Claims["email"].(string); ok {
		pr.Email = email
	}
	return pr, nil
}

// DeleteIdentity removes the Firebase Auth user for uid.
func (p *FirebaseProvider) DeleteIdentity(ctx context.Context, uid string) error {
	return p.client.DeleteUser(ctx, uid)
}
