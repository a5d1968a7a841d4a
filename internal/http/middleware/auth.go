// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication backed by the identity
// provider, plus a role gate for admin-only routes. The verified principal's
// UID and role claim are stashed in the Gin context so handlers, the access
// logger, and the rate limiter can key on the caller.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/identity"
)

// Context keys set by Auth.
const (
	ctxKeyOfficerID = "officerID"
	ctxKeyRole      = "role"
	ctxKeyToken     = "bearerToken"
)

// OfficerID returns the authenticated caller's identity UID, or "".
func OfficerID(c *gin.Context) string {
	v, _ := c.Get(ctxKeyOfficerID)
	s, _ := v.(string)
	return s
}

// Role returns the authenticated caller's role claim, or "".
func Role(c *gin.Context) string {
	v, _ := c.Get(ctxKeyRole)
	s, _ := v.(string)
	return s
}

// BearerToken returns the raw credential presented by the caller, or "".
// The officer-removal coordinator re-verifies it before mutating anything.
func BearerToken(c *gin.Context) string {
	v, _ := c.Get(ctxKeyToken)
	s, _ := v.(string)
	return s
}

// Auth returns a middleware that requires a valid "Authorization: Bearer"
// credential, verifies it through the identity provider, and stores the
// principal in the request context. Missing or invalid credentials abort
// with 401 and the standard error envelope.
func Auth(idp identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		principal, err := idp.VerifyToken(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(ctxKeyOfficerID, principal.UID)
		c.Set(ctxKeyRole, principal.Role())
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

// RequireRole returns a middleware that aborts with 403 unless the caller's
// role claim is one of the allowed roles. Place after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[Role(c)]; !ok {
			abortAuth(c, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// extractBearer pulls the credential out of an Authorization header value.
func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// abortAuth writes the standard error envelope for auth failures.
func abortAuth(c *gin.Context, status int, code, msg string) {
	rid := c.Writer.Header().Get(requestIDHeader)
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": rid,
		"code":       code,
		"message":    msg,
	})
}
