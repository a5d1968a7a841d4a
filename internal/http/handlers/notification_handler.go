package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/http/middleware"
	"github.com/mkamau/cybercase-backend/internal/services"
	"github.com/mkamau/cybercase-backend/internal/utils"
)

// maxNotificationPageSize caps the page size a client may request.
const maxNotificationPageSize = 100

// NotificationListResponse is a page of the caller's notifications.
type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
}

// NotificationCountResponse carries the caller's unread count.
type NotificationCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were flipped.
type MarkAllReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List the caller's notifications
// @Description Returns a newest-first page of the authenticated officer's notifications. Pass unread=true for the unread subset (unpaginated).
// @Tags        Notifications
// @Produce     json
// @Param       page      query  int     false "Page number (1-based)"  default(1)
// @Param       pageSize  query  int     false "Page size"              default(20)
// @Param       unread    query  bool    false "Only unread"
// @Success     200  {object}  handlers.NotificationListResponse
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	officerID := middleware.OfficerID(c)
	ctx := c.Request.Context()

	if strings.EqualFold(c.Query("unread"), "true") {
		items, err := h.notifSvc.ListUnread(ctx, officerID)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list notifications")
			return
		}
		ok(c, http.StatusOK, NotificationListResponse{
			Notifications: items,
			Total:         int64(len(items)),
			Page:          1,
			PageSize:      len(items),
		})
		return
	}

	page, pageSize := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("pageSize"), 20),
		maxNotificationPageSize,
	)

	items, total, err := h.notifSvc.ListPage(ctx, officerID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list notifications")
		return
	}
	ok(c, http.StatusOK, NotificationListResponse{
		Notifications: items,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	})
}

// CountNotifications godoc
// @ID          countNotifications
// @Summary     Count the caller's unread notifications
// @Tags        Notifications
// @Produce     json
// @Success     200  {object}  handlers.NotificationCountResponse
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/count [get]
func (h *Handlers) CountNotifications(c *gin.Context) {
	n, err := h.notifSvc.CountUnread(c.Request.Context(), middleware.OfficerID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to count notifications")
		return
	}
	ok(c, http.StatusOK, NotificationCountResponse{Unread: n})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark one notification as read
// @Description Flips the notification to read. 404 when the notification does not exist, is already read, or belongs to another officer.
// @Tags        Notifications
// @Produce     json
// @Param       id  path  string  true  "Notification ID"
// @Success     200  {object}  map[string]bool
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id}/read [post]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	err := h.notifSvc.MarkRead(c.Request.Context(), middleware.OfficerID(c), c.Param("id"))
	switch {
	case err == nil:
		ok(c, http.StatusOK, gin.H{"success": true})
	case errors.Is(err, services.ErrNotificationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to mark notification read")
	}
}

// MarkAllNotificationsRead godoc
// @ID          markAllNotificationsRead
// @Summary     Mark every unread notification as read
// @Tags        Notifications
// @Produce     json
// @Success     200  {object}  handlers.MarkAllReadResponse
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/read-all [post]
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notifSvc.MarkAllRead(c.Request.Context(), middleware.OfficerID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to mark notifications read")
		return
	}
	ok(c, http.StatusOK, MarkAllReadResponse{Success: true, Updated: n})
}
