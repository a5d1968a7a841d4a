// Administrative HTTP handlers.
//
// This file exposes the coordinated administrative mutations:
//   - DELETE /admin/officer     (remove an officer from both systems)
//   - POST   /officers/assign   (atomic case assignment)
//
// Handlers are transport-thin: they validate input, call the coordinator,
// and translate outcomes into the documented wire contract. The assignment
// endpoint supports Idempotency-Key replays backed by the idempotency table.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/http/middleware"
	"github.com/mkamau/cybercase-backend/internal/notify"
	"github.com/mkamau/cybercase-backend/internal/repo"
	"github.com/mkamau/cybercase-backend/internal/services"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

//
// Service contracts (context-aware)
//

// AdminService defines the coordinated administrative mutations consumed by
// HTTP handlers. Implementations must be safe for concurrent use and must
// honor the provided context.
type AdminService interface {
	// DeleteOfficer removes an officer from the identity provider (courtesy)
	// and the datastore (authoritative).
	DeleteOfficer(ctx context.Context, officerID, callerToken string) (*domain.OperationOutcome, error)
	// AssignCase assigns a complaint to an officer via the datastore's
	// atomic procedure.
	AssignCase(ctx context.Context, complaintID, officerID, adminID, notes string) (*domain.OperationOutcome, error)
}

// CaseService defines complaint status transitions consumed by HTTP handlers.
type CaseService interface {
	// TransitionStatus moves a complaint to a new status and dispatches the
	// resulting notification best-effort.
	TransitionStatus(ctx context.Context, complaintID, newStatus string) (*services.StatusChangeResult, error)
}

// NotificationService defines officer-scoped notification operations
// consumed by HTTP handlers.
type NotificationService interface {
	// ListPage returns a page of the officer's notifications and the total.
	ListPage(ctx context.Context, officerID string, page, pageSize int) ([]domain.Notification, int64, error)
	// ListUnread returns the officer's unread notifications.
	ListUnread(ctx context.Context, officerID string) ([]domain.Notification, error)
	// CountUnread returns the officer's unread count.
	CountUnread(ctx context.Context, officerID string) (int64, error)
	// MarkRead flips one notification to read.
	MarkRead(ctx context.Context, officerID, notificationID string) error
	// MarkAllRead flips every unread notification for the officer.
	MarkAllRead(ctx context.Context, officerID string) (int64, error)
}

// OfficerService defines the officer-profile operations consumed by HTTP
// handlers (device-token registration).
type OfficerService interface {
	// RegisterDeviceToken stores or clears the officer's push token.
	RegisterDeviceToken(ctx context.Context, officerID, token string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for administrative operations,
// complaints, and notifications. It depends on abstract service interfaces
// to keep transport concerns separate from business logic.
type Handlers struct {
	adminSvc   AdminService
	caseSvc    CaseService
	notifSvc   NotificationService
	officerSvc OfficerService

	// DB and IdempotencyTTL back Idempotency-Key replays on the
	// assignment endpoint; both optional.
	DB             *gorm.DB
	IdempotencyTTL time.Duration

	// Toasts, NotifyStore, and PollInterval back the SSE streams and the
	// in-process broadcast of administrative outcomes; all optional.
	Toasts       *toast.Queue
	NotifyStore  notify.Store
	PollInterval time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(adminSvc AdminService, caseSvc CaseService, notifSvc NotificationService, officerSvc OfficerService) *Handlers {
	return &Handlers{
		adminSvc:   adminSvc,
		caseSvc:    caseSvc,
		notifSvc:   notifSvc,
		officerSvc: officerSvc,
	}
}

//
// DTOs
//

// DeleteOfficerRequest is the JSON payload for officer removal.
type DeleteOfficerRequest struct {
	// OfficerID identifies the officer row to remove.
	OfficerID string `json:"officerId" binding:"required" example:"6f1b0e0a-6a1f-4f7e-93d4-0d4a2a4c9b1e"`
}

// DeleteOfficerResponse is the wire contract for a completed removal.
type DeleteOfficerResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	DeletedOfficer *domain.DeletedOfficer `json:"deletedOfficer"`
	// Warnings lists tolerated courtesy-step failures (partial outcome).
	Warnings []string `json:"warnings,omitempty"`
}

// AssignCaseRequest is the JSON payload for case assignment.
type AssignCaseRequest struct {
	ComplaintID string `json:"complaintId" example:"d3b1c9a2-54e7-4f8b-b9c1-1a2b3c4d5e6f"`
	OfficerID   string `json:"officerId"   example:"6f1b0e0a-6a1f-4f7e-93d4-0d4a2a4c9b1e"`
	AdminID     string `json:"adminId"     example:"a1b2c3d4-e5f6-4a5b-8c9d-0e1f2a3b4c5d"`
	Notes       string `json:"notes,omitempty"`
}

// AssignCaseResponse is the wire contract for a completed assignment.
type AssignCaseResponse struct {
	Success         bool   `json:"success"`
	AssignmentID    string `json:"assignment_id"`
	OfficerName     string `json:"officer_name"`
	Message         string `json:"message"`
	ComplaintNumber string `json:"complaint_number"`
}

//
// Handlers
//

// DeleteOfficer godoc
// @ID          deleteOfficer
// @Summary     Remove an officer
// @Description Deletes the officer's identity-provider account (best effort) and the durable record (authoritative).
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       body           body    handlers.DeleteOfficerRequest  true  "Officer to remove"
// @Success     200  {object}  handlers.DeleteOfficerResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Officer not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/officer [delete]
func (h *Handlers) DeleteOfficer(c *gin.Context) {
	var req DeleteOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "officerId is required")
		return
	}

	out, err := h.adminSvc.DeleteOfficer(c.Request.Context(), req.OfficerID, middleware.BearerToken(c))
	if err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or expired token")
		case errors.Is(err, services.ErrOfficerNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "officer not found")
		case errors.As(err, &upstream):
			// The datastore error is preserved verbatim for diagnostics.
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, upstream.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	if h.Toasts != nil {
		h.Toasts.Publish("Officer removed", out.Message, toast.SeverityDefault)
	}

	ok(c, http.StatusOK, DeleteOfficerResponse{
		Success:        true,
		Message:        out.Message,
		DeletedOfficer: out.DeletedOfficer,
		Warnings:       out.Warnings(),
	})
}

// AssignCase godoc
// @ID          assignCase
// @Summary     Assign a complaint to an officer
// @Description Runs the datastore's atomic assignment procedure. Business refusals return 400 with the embedded reason; structural failures return 500 with the provider error.
// @Tags        Officers
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false "Safe-retry key"
// @Param       body             body    handlers.AssignCaseRequest  true  "Assignment payload"
// @Success     200  {object}  handlers.AssignCaseResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request or rejected"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /officers/assign [post]
func (h *Handlers) AssignCase(c *gin.Context) {
	var req AssignCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()

	// Serve a replay of a previously completed assignment. The lookup is
	// keyed by the verified caller identity, not the retry headers the
	// middleware saw.
	if key, okKey := middleware.GetIdempotencyKey(c); okKey && h.DB != nil {
		if resp := h.assignReplay(ctx, middleware.OfficerID(c), req.ComplaintID, key); resp != nil {
			ok(c, http.StatusOK, *resp)
			return
		}
	}

	out, err := h.adminSvc.AssignCase(ctx, req.ComplaintID, req.OfficerID, req.AdminID, req.Notes)
	if err != nil {
		var rejection *services.DomainRejection
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "complaintId, officerId, and adminId are required")
		case errors.As(err, &rejection):
			// A well-formed refusal from the procedure, surfaced verbatim.
			if h.Toasts != nil {
				h.Toasts.Publish("Assignment rejected", rejection.Reason, toast.SeverityDestructive)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   rejection.Reason,
			})
		case errors.As(err, &upstream):
			fail(c, http.StatusInternalServerError, ErrCodeUpstreamFailed, upstream.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	resp := AssignCaseResponse{
		Success:         true,
		AssignmentID:    out.AssignmentID,
		OfficerName:     out.OfficerName,
		Message:         out.Message,
		ComplaintNumber: out.ComplaintNumber,
	}

	// Record the completed assignment for future replays (best effort).
	if key, okKey := middleware.GetIdempotencyKey(c); okKey && h.DB != nil {
		ttl := h.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		_, _ = repo.CreateIdempotency(ctx, h.DB, middleware.OfficerID(c), req.ComplaintID, key, out.AssignmentID, http.StatusOK, ttl)
	}

	if h.Toasts != nil {
		h.Toasts.Publish("Case assigned", out.Message, toast.SeverityDefault)
	}

	ok(c, http.StatusOK, resp)
}

// assignReplay rebuilds the response for a previously completed assignment,
// or nil when the stored record cannot be resolved (the request then runs
// normally and the unique index dedupes).
func (h *Handlers) assignReplay(ctx context.Context, adminID, complaintID, key string) *AssignCaseResponse {
	rec, err := repo.GetIdempotency(ctx, h.DB, adminID, complaintID, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil
	}
	out, err := repo.GetAssignment(ctx, h.DB, rec.AssignmentID)
	if err != nil {
		return nil
	}
	return &AssignCaseResponse{
		Success:         true,
		AssignmentID:    out.AssignmentID,
		OfficerName:     out.OfficerName,
		Message:         "Case " + out.ComplaintNumber + " assigned to " + out.OfficerName,
		ComplaintNumber: out.ComplaintNumber,
	}
}
