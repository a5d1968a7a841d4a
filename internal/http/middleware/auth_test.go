package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/identity"
)

// fakeIDP verifies a single known token.
type fakeIDP struct {
	token     string
	principal *identity.Principal
}

func (f fakeIDP) VerifyToken(_ context.Context, token string) (*identity.Principal, error) {
	if token != f.token {
		return nil, identity.ErrInvalidToken
	}
	return f.principal, nil
}

func (fakeIDP) DeleteIdentity(context.Context, string) error { return nil }

func TestExtractBearer(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
	}{
		"standard":       {"Bearer abc123", "abc123"},
		"case folded":    {"bearer abc123", "abc123"},
		"padded":         {"Bearer   abc123  ", "abc123"},
		"missing prefix": {"abc123", ""},
		"prefix only":    {"Bearer ", ""},
		"empty":          {"", ""},
		"basic scheme":   {"Basic dXNlcjpwYXNz", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := extractBearer(tc.header); got != tc.want {
				t.Fatalf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestAuth_MissingAndInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	idp := fakeIDP{token: "good", principal: &identity.Principal{UID: "off-1"}}
	r := gin.New()
	r.Use(Auth(idp))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// No Authorization header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header -> %d", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out["code"] != "unauthorized" {
		t.Fatalf("code = %v", out["code"])
	}

	// Wrong token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token -> %d", w.Code)
	}
}

func TestAuth_StoresPrincipalInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	idp := fakeIDP{
		token: "good",
		principal: &identity.Principal{
			UID:    "off-1",
			Claims: map[string]any{"role": domain.RoleAdmin},
		},
	}
	r := gin.New()
	r.Use(Auth(idp))

	var gotID, gotRole, gotToken string
	r.GET("/ping", func(c *gin.Context) {
		gotID, gotRole, gotToken = OfficerID(c), Role(c), BearerToken(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("auth -> %d body=%s", w.Code, w.Body.String())
	}
	if gotID != "off-1" || gotRole != domain.RoleAdmin || gotToken != "good" {
		t.Fatalf("context: id=%q role=%q token=%q", gotID, gotRole, gotToken)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		role string
		want int
	}{
		"admin allowed":    {domain.RoleAdmin, http.StatusNoContent},
		"officer rejected": {domain.RoleOfficer, http.StatusForbidden},
		"no role rejected": {"", http.StatusForbidden},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tc.role != "" {
					c.Set(ctxKeyRole, tc.role)
				}
			})
			r.Use(RequireRole(domain.RoleAdmin))
			r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestContextAccessors_WrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if OfficerID(c) != "" || Role(c) != "" || BearerToken(c) != "" {
		t.Fatalf("expected empty accessors on fresh context")
	}
	c.Set(ctxKeyOfficerID, 42)
	c.Set(ctxKeyRole, errors.New("nope"))
	if OfficerID(c) != "" || Role(c) != "" {
		t.Fatalf("expected empty accessors for wrong-typed values")
	}
}
