package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/repo"
	"github.com/mkamau/cybercase-backend/internal/services"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:admin_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.Officer{}, &domain.Complaint{}, &domain.CaseAssignment{},
		&domain.Notification{}, &domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ---------- flexible service stubs ----------

type stubAdminSvc struct {
	deleteOfficer func(context.Context, string, string) (*domain.OperationOutcome, error)
	assignCase    func(context.Context, string, string, string, string) (*domain.OperationOutcome, error)
}

func (s stubAdminSvc) DeleteOfficer(ctx context.Context, officerID, token string) (*domain.OperationOutcome, error) {
	if s.deleteOfficer != nil {
		return s.deleteOfficer(ctx, officerID, token)
	}
	return &domain.OperationOutcome{Status: domain.OutcomeSuccess}, nil
}

func (s stubAdminSvc) AssignCase(ctx context.Context, complaintID, officerID, adminID, notes string) (*domain.OperationOutcome, error) {
	if s.assignCase != nil {
		return s.assignCase(ctx, complaintID, officerID, adminID, notes)
	}
	return &domain.OperationOutcome{Status: domain.OutcomeSuccess}, nil
}

type stubCaseSvc struct {
	transition func(context.Context, string, string) (*services.StatusChangeResult, error)
}

func (s stubCaseSvc) TransitionStatus(ctx context.Context, complaintID, newStatus string) (*services.StatusChangeResult, error) {
	if s.transition != nil {
		return s.transition(ctx, complaintID, newStatus)
	}
	return &services.StatusChangeResult{}, nil
}

type stubNotifSvc struct {
	listPage    func(context.Context, string, int, int) ([]domain.Notification, int64, error)
	listUnread  func(context.Context, string) ([]domain.Notification, error)
	countUnread func(context.Context, string) (int64, error)
	markRead    func(context.Context, string, string) error
	markAllRead func(context.Context, string) (int64, error)
}

func (s stubNotifSvc) ListPage(ctx context.Context, officerID string, page, pageSize int) ([]domain.Notification, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, officerID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubNotifSvc) ListUnread(ctx context.Context, officerID string) ([]domain.Notification, error) {
	if s.listUnread != nil {
		return s.listUnread(ctx, officerID)
	}
	return nil, nil
}

func (s stubNotifSvc) CountUnread(ctx context.Context, officerID string) (int64, error) {
	if s.countUnread != nil {
		return s.countUnread(ctx, officerID)
	}
	return 0, nil
}

func (s stubNotifSvc) MarkRead(ctx context.Context, officerID, notificationID string) error {
	if s.markRead != nil {
		return s.markRead(ctx, officerID, notificationID)
	}
	return nil
}

func (s stubNotifSvc) MarkAllRead(ctx context.Context, officerID string) (int64, error) {
	if s.markAllRead != nil {
		return s.markAllRead(ctx, officerID)
	}
	return 0, nil
}

type stubOfficerSvc struct {
	register func(context.Context, string, string) error
}

func (s stubOfficerSvc) RegisterDeviceToken(ctx context.Context, officerID, token string) error {
	if s.register != nil {
		return s.register(ctx, officerID, token)
	}
	return nil
}

func newStubHandlers(admin stubAdminSvc) *Handlers {
	return New(admin, stubCaseSvc{}, stubNotifSvc{}, stubOfficerSvc{})
}

// ---------- DeleteOfficer ----------

func TestDeleteOfficer_BadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers(stubAdminSvc{})
	r := gin.New()
	r.DELETE("/admin/officer", h.DeleteOfficer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/officer", bytes.NewBufferString(`{"officerId":""}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing officerId -> %d", w.Code)
	}
}

func TestDeleteOfficer_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		err  error
		want int
		code string
	}{
		"unauthorized": {services.ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
		"not found":    {services.ErrOfficerNotFound, http.StatusNotFound, ErrCodeNotFound},
		"upstream":     {&services.UpstreamError{Provider: "datastore", Err: errors.New("locked")}, http.StatusInternalServerError, ErrCodeDeleteFailed},
		"unexpected":   {errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := stubAdminSvc{
				deleteOfficer: func(context.Context, string, string) (*domain.OperationOutcome, error) {
					return nil, tc.err
				},
			}
			h := newStubHandlers(svc)
			r := gin.New()
			r.DELETE("/admin/officer", h.DeleteOfficer)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/admin/officer", bytes.NewBufferString(`{"officerId":"off-1"}`))
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			var out ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("json: %v", err)
			}
			if out.Code != tc.code {
				t.Fatalf("code = %q, want %q", out.Code, tc.code)
			}
		})
	}
}

func TestDeleteOfficer_PartialSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotOfficer, gotToken string
	svc := stubAdminSvc{
		deleteOfficer: func(_ context.Context, officerID, token string) (*domain.OperationOutcome, error) {
			gotOfficer, gotToken = officerID, token
			return &domain.OperationOutcome{
				Status:  domain.OutcomePartial,
				Message: "Officer Jane Wanjiku deleted",
				Steps: []domain.StepResult{
					{Name: "verify", Status: domain.StepOK},
					{Name: "identity", Status: domain.StepWarning, Detail: "identity cleanup failed: uid gone"},
					{Name: "datastore", Status: domain.StepOK},
				},
				DeletedOfficer: &domain.DeletedOfficer{ID: "off-1", Name: "Jane Wanjiku", BadgeNumber: "B-42"},
			}, nil
		},
	}
	h := newStubHandlers(svc)
	toasts := toast.New(time.Minute)
	defer toasts.Close()
	h.Toasts = toasts

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("bearerToken", "tok-1") })
	r.DELETE("/admin/officer", h.DeleteOfficer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/officer", bytes.NewBufferString(`{"officerId":"off-1"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete -> %d body=%s", w.Code, w.Body.String())
	}
	if gotOfficer != "off-1" || gotToken != "tok-1" {
		t.Fatalf("service got officer=%q token=%q", gotOfficer, gotToken)
	}

	var out DeleteOfficerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.Success || out.Message != "Officer Jane Wanjiku deleted" {
		t.Fatalf("unexpected body: %#v", out)
	}
	if out.DeletedOfficer == nil || out.DeletedOfficer.BadgeNumber != "B-42" {
		t.Fatalf("deletedOfficer = %#v", out.DeletedOfficer)
	}
	if len(out.Warnings) != 1 || out.Warnings[0] != "identity cleanup failed: uid gone" {
		t.Fatalf("warnings = %v", out.Warnings)
	}
	if got := toasts.Messages(); len(got) != 1 || got[0].Title != "Officer removed" {
		t.Fatalf("toasts = %#v", got)
	}
}

// ---------- AssignCase ----------

func TestAssignCase_BadJSON_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Malformed body -> 400
	{
		h := newStubHandlers(stubAdminSvc{})
		r := gin.New()
		r.POST("/officers/assign", h.AssignCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Missing required fields -> 400 with bad_request code
	{
		svc := stubAdminSvc{
			assignCase: func(context.Context, string, string, string, string) (*domain.OperationOutcome, error) {
				return nil, services.ErrInvalidRequest
			},
		}
		h := newStubHandlers(svc)
		r := gin.New()
		r.POST("/officers/assign", h.AssignCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString(`{"complaintId":"c1"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("validation -> %d", w.Code)
		}
		var out ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Code != ErrCodeBadRequest {
			t.Fatalf("code = %q", out.Code)
		}
	}
}

func TestAssignCase_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := stubAdminSvc{
		assignCase: func(_ context.Context, complaintID, officerID, adminID, notes string) (*domain.OperationOutcome, error) {
			if complaintID != "c1" || officerID != "off-1" || adminID != "adm-1" || notes != "priority" {
				return nil, fmt.Errorf("unexpected args %s/%s/%s/%s", complaintID, officerID, adminID, notes)
			}
			return &domain.OperationOutcome{
				Status:          domain.OutcomeSuccess,
				Message:         "Case CC-2024-001 assigned to John Omondi",
				AssignmentID:    "asg-1",
				OfficerName:     "John Omondi",
				ComplaintNumber: "CC-2024-001",
			}, nil
		},
	}
	h := newStubHandlers(svc)
	toasts := toast.New(time.Minute)
	defer toasts.Close()
	h.Toasts = toasts

	r := gin.New()
	r.POST("/officers/assign", h.AssignCase)

	w := httptest.NewRecorder()
	body := `{"complaintId":"c1","officerId":"off-1","adminId":"adm-1","notes":"priority"}`
	req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("assign -> %d body=%s", w.Code, w.Body.String())
	}

	var out AssignCaseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	want := AssignCaseResponse{
		Success:         true,
		AssignmentID:    "asg-1",
		OfficerName:     "John Omondi",
		Message:         "Case CC-2024-001 assigned to John Omondi",
		ComplaintNumber: "CC-2024-001",
	}
	if out != want {
		t.Fatalf("body = %#v, want %#v", out, want)
	}
	if got := toasts.Messages(); len(got) != 1 || got[0].Title != "Case assigned" {
		t.Fatalf("toasts = %#v", got)
	}
}

func TestAssignCase_DomainRejection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := stubAdminSvc{
		assignCase: func(context.Context, string, string, string, string) (*domain.OperationOutcome, error) {
			return nil, &services.DomainRejection{Reason: "Officer unavailable"}
		},
	}
	h := newStubHandlers(svc)
	toasts := toast.New(time.Minute)
	defer toasts.Close()
	h.Toasts = toasts

	r := gin.New()
	r.POST("/officers/assign", h.AssignCase)

	w := httptest.NewRecorder()
	body := `{"complaintId":"c1","officerId":"off-1","adminId":"adm-1"}`
	req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rejection -> %d", w.Code)
	}

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Success || out.Error != "Officer unavailable" {
		t.Fatalf("body = %#v", out)
	}
	if got := toasts.Messages(); len(got) != 1 || got[0].Severity != toast.SeverityDestructive {
		t.Fatalf("toasts = %#v", got)
	}
}

func TestAssignCase_UpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := stubAdminSvc{
		assignCase: func(context.Context, string, string, string, string) (*domain.OperationOutcome, error) {
			return nil, &services.UpstreamError{Provider: "datastore", Err: errors.New("tx aborted")}
		},
	}
	h := newStubHandlers(svc)
	r := gin.New()
	r.POST("/officers/assign", h.AssignCase)

	w := httptest.NewRecorder()
	body := `{"complaintId":"c1","officerId":"off-1","adminId":"adm-1"}`
	req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("upstream -> %d", w.Code)
	}
	var out ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Code != ErrCodeUpstreamFailed {
		t.Fatalf("code = %q", out.Code)
	}
}

func TestAssignCase_IdempotentReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	ctx := context.Background()

	// Seed a completed assignment plus its idempotency record.
	off := &domain.Officer{ID: "off-1", Name: "John Omondi", BadgeNumber: "B-7", Email: "jo@example.com"}
	comp := &domain.Complaint{ID: "c1", ComplaintNumber: "CC-2024-001", Status: domain.ComplaintStatusAssigned}
	if err := db.Create(off).Error; err != nil {
		t.Fatalf("seed officer: %v", err)
	}
	if err := db.Create(comp).Error; err != nil {
		t.Fatalf("seed complaint: %v", err)
	}
	asg := &domain.CaseAssignment{ID: "asg-1", ComplaintID: "c1", OfficerID: "off-1", AdminID: "adm-1"}
	if err := db.Create(asg).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "adm-1", "c1", "retry-key", "asg-1", http.StatusOK, time.Hour); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}

	calls := 0
	svc := stubAdminSvc{
		assignCase: func(context.Context, string, string, string, string) (*domain.OperationOutcome, error) {
			calls++
			return nil, errors.New("must not be called on replay")
		},
	}
	h := newStubHandlers(svc)
	h.DB = db

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("officerID", "adm-1")
		c.Set("idem.key", "retry-key")
	})
	r.POST("/officers/assign", h.AssignCase)

	w := httptest.NewRecorder()
	body := `{"complaintId":"c1","officerId":"off-1","adminId":"adm-1"}`
	req := httptest.NewRequest(http.MethodPost, "/officers/assign", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replay -> %d body=%s", w.Code, w.Body.String())
	}
	if calls != 0 {
		t.Fatalf("service called %d times on replay", calls)
	}

	var out AssignCaseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.Success || out.AssignmentID != "asg-1" || out.ComplaintNumber != "CC-2024-001" {
		t.Fatalf("replay body = %#v", out)
	}
	if out.Message != "Case CC-2024-001 assigned to John Omondi" {
		t.Fatalf("replay message = %q", out.Message)
	}
}
