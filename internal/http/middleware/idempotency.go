// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for the case-assignment endpoint.
// An AdministrativeOperation is consumed exactly once: when a client retries
// POST /officers/assign with the same Idempotency-Key, the middleware detects
// the previously completed request via a user-supplied lookup and annotates
// the context so the handler can replay the stored result and the rate
// limiter can wave the request through.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request would replay a previously completed
// assignment. Handlers remain in control of how to serve the replay.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
// TTL enforcement belongs inside the lookup.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used.
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid completed assignment exists
// for (adminID, complaintID, key) at the given time. Lookup failures should
// not block normal processing.
type IdempotencyLookup func(ctx context.Context, adminID, complaintID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it in the request context, and checks for a prior completed
// request via the supplied lookup. An absent header makes the middleware a
// no-op; a malformed header is rejected with 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			rid := c.Writer.Header().Get(requestIDHeader)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": rid,
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key header",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			// This middleware runs before authentication, so the caller
			// identity comes from the retry headers here; the handler
			// re-checks against the verified identity.
			adminID := OfficerID(c)
			if adminID == "" {
				adminID = c.GetHeader("X-Officer-ID")
			}
			complaintID := c.GetHeader("X-Complaint-ID")
			exists, err := lookup(c.Request.Context(), adminID, complaintID, key, time.Now().UTC())
			if err == nil && exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
