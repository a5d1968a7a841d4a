package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/services"
)

// UpdateStatusRequest is the JSON payload for a complaint status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"resolved"`
}

// UpdateStatusResponse is the wire contract for a completed transition.
// Dispatch reports the notification outcome and is absent for unassigned
// complaints and no-op transitions.
type UpdateStatusResponse struct {
	Success   bool                     `json:"success"`
	Complaint *domain.Complaint        `json:"complaint"`
	OldStatus string                   `json:"old_status"`
	Dispatch  *services.DispatchResult `json:"dispatch,omitempty"`
}

// UpdateComplaintStatus godoc
// @ID          updateComplaintStatus
// @Summary     Change a complaint's status
// @Description Transitions the complaint and, when an officer is assigned, records and pushes the resulting notification. Push failures are reported in the dispatch block, never as request failures.
// @Tags        Complaints
// @Accept      json
// @Produce     json
// @Param       id    path  string                         true  "Complaint ID"
// @Param       body  body  handlers.UpdateStatusRequest   true  "New status"
// @Success     200  {object}  handlers.UpdateStatusResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid status"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Complaint not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /complaints/{id}/status [patch]
func (h *Handlers) UpdateComplaintStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}

	res, err := h.caseSvc.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status value")
		case errors.Is(err, services.ErrComplaintNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "complaint not found")
		case errors.As(err, &upstream):
			fail(c, http.StatusInternalServerError, ErrCodeUpstreamFailed, upstream.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, UpdateStatusResponse{
		Success:   true,
		Complaint: res.Complaint,
		OldStatus: res.OldStatus,
		Dispatch:  res.Dispatch,
	})
}
