package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/http/middleware"
	"github.com/mkamau/cybercase-backend/internal/services"
)

// DeviceTokenRequest is the JSON payload for push-token registration.
// An empty token clears the registration.
type DeviceTokenRequest struct {
	DeviceToken string `json:"deviceToken"`
}

// RegisterDeviceToken godoc
// @ID          registerDeviceToken
// @Summary     Register the caller's push delivery token
// @Description Stores the device token used by the push dispatcher. Sending an empty token clears it, so future dispatches skip this officer.
// @Tags        Officers
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.DeviceTokenRequest  true  "Device token"
// @Success     200  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Officer not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /officers/device-token [post]
func (h *Handlers) RegisterDeviceToken(c *gin.Context) {
	var req DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.officerSvc.RegisterDeviceToken(c.Request.Context(), middleware.OfficerID(c), req.DeviceToken)
	switch {
	case err == nil:
		ok(c, http.StatusOK, gin.H{"success": true})
	case errors.Is(err, services.ErrInvalidRequest):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "officer identity missing from token")
	case errors.Is(err, services.ErrOfficerNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "officer not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to register device token")
	}
}

// DismissToast godoc
// @ID          dismissToast
// @Summary     Dismiss a toast
// @Description Removes the toast from the live list and cancels its expiry timer. Unknown IDs are a no-op, so dismissal is safe to retry.
// @Tags        Toasts
// @Produce     json
// @Param       id  path  int  true  "Toast ID"
// @Success     200  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /toasts/{id}/dismiss [post]
func (h *Handlers) DismissToast(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "toast id must be a number")
		return
	}
	if h.Toasts != nil {
		h.Toasts.Dismiss(id)
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}
