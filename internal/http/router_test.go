package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkamau/cybercase-backend/internal/config"
	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/identity"
	"github.com/mkamau/cybercase-backend/internal/push"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---

func newRouterDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Officer{}, &domain.Complaint{}, &domain.CaseAssignment{},
		&domain.Notification{}, &domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath:        "/api/v1",
		RateRPS:            1000,
		RateBurst:          1000,
		NotifyPollInterval: 30 * time.Second,
		ToastTTL:           5 * time.Second,
		IdempotencyTTL:     time.Hour,
		Security:           config.SecurityConfig{EnableHSTS: false},
		OTEL:               config.OTELConfig{ServiceName: "test-svc"},
	}
	db := newRouterDB(t)
	toasts := toast.New(cfg.ToastTTL)
	t.Cleanup(toasts.Close)

	RegisterRoutes(r, db, identity.Insecure{}, push.Nop{}, toasts, cfg)
	return r, db
}

func TestRegisterRoutes_HealthMetricsFallbacks(t *testing.T) {
	r, _ := newRouter(t)

	// Health
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health -> %d", w.Code)
	}

	// Metrics endpoint is mounted
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics -> %d", w.Code)
	}

	// Unknown route -> 404 with standard envelope
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route -> %d", w.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("json: %v", err)
	}
	if envelope["code"] != "not_found" {
		t.Fatalf("code = %v", envelope["code"])
	}

	// Wrong method on a known route -> 405
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("bad method -> %d", w.Code)
	}
}

func TestRegisterRoutes_AuthAndRoleGates(t *testing.T) {
	r, _ := newRouter(t)

	// No credential -> 401
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/count", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous -> %d", w.Code)
	}

	// Valid credential, officer role -> notifications reachable
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/count", nil)
	req.Header.Set("Authorization", "Bearer off-1:officer")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("officer count -> %d body=%s", w.Code, w.Body.String())
	}

	// Officer role on an admin route -> 403
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/officer", bytes.NewBufferString(`{"officerId":"x"}`))
	req.Header.Set("Authorization", "Bearer off-1:officer")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("officer on admin route -> %d", w.Code)
	}
}

func TestRegisterRoutes_AssignFlow(t *testing.T) {
	r, db := newRouter(t)

	off := &domain.Officer{ID: "off-1", Name: "john omondi", BadgeNumber: "B-7", Email: "jo@example.com", Available: true}
	open := &domain.Complaint{ID: "c1", ComplaintNumber: "CC-2024-001", Title: "Phishing", Status: domain.ComplaintStatusOpen}
	closed := &domain.Complaint{ID: "c2", ComplaintNumber: "CC-2024-002", Title: "Fraud", Status: domain.ComplaintStatusClosed}
	for _, row := range []any{off, open, closed} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/officers/assign", bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer adm-1:admin")
		r.ServeHTTP(w, req)
		return w
	}

	// Successful assignment through the full stack
	w := post(`{"complaintId":"c1","officerId":"off-1","adminId":"adm-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("assign -> %d body=%s", w.Code, w.Body.String())
	}
	var okBody struct {
		Success         bool   `json:"success"`
		OfficerName     string `json:"officer_name"`
		ComplaintNumber string `json:"complaint_number"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &okBody); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !okBody.Success || okBody.OfficerName != "john omondi" || okBody.ComplaintNumber != "CC-2024-001" {
		t.Fatalf("assign body = %#v", okBody)
	}

	// Closed case refused with the embedded reason
	w = post(`{"complaintId":"c2","officerId":"off-1","adminId":"adm-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("closed case -> %d body=%s", w.Code, w.Body.String())
	}
	var rejected struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rejected.Success || rejected.Error != "Case already closed" {
		t.Fatalf("rejection body = %#v", rejected)
	}
}
