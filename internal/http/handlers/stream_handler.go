// Server-sent event streams.
//
// Two live feeds are exposed:
//   - /notifications/stream  pushes the caller's unread-count snapshots,
//     backed by a per-connection poll tracker.
//   - /toasts/stream         pushes the shared ephemeral toast list.
//
// Both streams bridge callback subscriptions into a buffered channel so the
// producer never blocks on a slow client; a full buffer drops intermediate
// frames (each frame carries full state, so dropping is safe).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkamau/cybercase-backend/internal/http/middleware"
	"github.com/mkamau/cybercase-backend/internal/notify"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

// streamBuffer is the per-client frame buffer before frames are dropped.
const streamBuffer = 8

// unreadEvent is one frame on the unread-count stream.
type unreadEvent struct {
	Count int          `json:"count"`
	State notify.State `json:"state"`
}

// toastEvent is one frame on the toast stream: the full current list.
type toastEvent struct {
	Toasts []toast.Message `json:"toasts"`
}

// StreamUnread godoc
// @ID          streamUnread
// @Summary     Stream the caller's unread notification count
// @Description Server-sent events. Emits an initial frame, then a frame per change; the backing store is re-polled on a fixed interval.
// @Tags        Notifications
// @Produce     text/event-stream
// @Success     200  {string}  string "event stream"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Router      /notifications/stream [get]
func (h *Handlers) StreamUnread(c *gin.Context) {
	if h.NotifyStore == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "notification stream unavailable")
		return
	}
	officerID := middleware.OfficerID(c)

	frames := make(chan unreadEvent, streamBuffer)
	tracker := notify.NewTracker(h.NotifyStore, h.PollInterval)
	unsubscribe := tracker.Subscribe(func(s notify.Snapshot) {
		select {
		case frames <- unreadEvent{Count: s.Count, State: s.State}:
		default:
		}
	})
	tracker.Start(c.Request.Context(), officerID)
	defer func() {
		unsubscribe()
		tracker.Close()
	}()

	setSSEHeaders(c)

	// Initial frame so the client renders immediately.
	snap := tracker.Snapshot()
	c.SSEvent("unread", unreadEvent{Count: snap.Count, State: snap.State})
	c.Writer.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev := <-frames:
			c.SSEvent("unread", ev)
			c.Writer.Flush()
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			c.Writer.Flush()
		}
	}
}

// StreamToasts godoc
// @ID          streamToasts
// @Summary     Stream the live toast list
// @Description Server-sent events. Emits the full toast list on connect and again whenever a toast is published, dismissed, or expires.
// @Tags        Toasts
// @Produce     text/event-stream
// @Success     200  {string}  string "event stream"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Router      /toasts/stream [get]
func (h *Handlers) StreamToasts(c *gin.Context) {
	if h.Toasts == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "toast stream unavailable")
		return
	}

	frames := make(chan toastEvent, streamBuffer)
	unsubscribe := h.Toasts.Subscribe(func(messages []toast.Message) {
		select {
		case frames <- toastEvent{Toasts: messages}:
		default:
		}
	})
	defer unsubscribe()

	setSSEHeaders(c)

	c.SSEvent("toasts", toastEvent{Toasts: h.Toasts.Messages()})
	c.Writer.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev := <-frames:
			c.SSEvent("toasts", ev)
			c.Writer.Flush()
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			c.Writer.Flush()
		}
	}
}

func setSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}
