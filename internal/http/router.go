// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/config"
	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/http/handlers"
	"github.com/mkamau/cybercase-backend/internal/http/middleware"
	"github.com/mkamau/cybercase-backend/internal/identity"
	"github.com/mkamau/cybercase-backend/internal/push"
	"github.com/mkamau/cybercase-backend/internal/repo"
	"github.com/mkamau/cybercase-backend/internal/services"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

// adminStoreShim adapts the repository free functions to the
// services.AdminStore interface expected by the AdminService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type adminStoreShim struct{}

// GetOfficer proxies repo.GetOfficer.
func (adminStoreShim) GetOfficer(ctx context.Context, db *gorm.DB, id string) (*domain.Officer, error) {
	return repo.GetOfficer(ctx, db, id)
}

// DeleteOfficer proxies repo.DeleteOfficer.
func (adminStoreShim) DeleteOfficer(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteOfficer(ctx, db, id)
}

// AssignComplaint proxies repo.AssignComplaint.
func (adminStoreShim) AssignComplaint(ctx context.Context, db *gorm.DB, complaintID, officerID, adminID, notes string) (*repo.AssignOutcome, error) {
	return repo.AssignComplaint(ctx, db, complaintID, officerID, adminID, notes)
}

// notificationRepoShim adapts the repository free functions to
// services.NotificationRepo.
type notificationRepoShim struct{}

func (notificationRepoShim) ListUnread(ctx context.Context, db *gorm.DB, officerID string) ([]domain.Notification, error) {
	return repo.ListUnread(ctx, db, officerID)
}

func (notificationRepoShim) CountUnread(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	return repo.CountUnread(ctx, db, officerID)
}

func (notificationRepoShim) ListNotificationsPage(ctx context.Context, db *gorm.DB, officerID string, offset, limit int) ([]domain.Notification, error) {
	return repo.ListNotificationsPage(ctx, db, officerID, offset, limit)
}

func (notificationRepoShim) CountNotifications(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	return repo.CountNotifications(ctx, db, officerID)
}

func (notificationRepoShim) MarkRead(ctx context.Context, db *gorm.DB, officerID, notificationID string) error {
	return repo.MarkRead(ctx, db, officerID, notificationID)
}

func (notificationRepoShim) MarkAllRead(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	return repo.MarkAllRead(ctx, db, officerID)
}

// dispatchStoreShim adapts the repository free functions to
// services.DispatchStore.
type dispatchStoreShim struct{}

func (dispatchStoreShim) CreateNotification(ctx context.Context, db *gorm.DB, officerID, complaintNumber, message, typ string) (*domain.Notification, error) {
	return repo.CreateNotification(ctx, db, officerID, complaintNumber, message, typ)
}

func (dispatchStoreShim) GetOfficer(ctx context.Context, db *gorm.DB, id string) (*domain.Officer, error) {
	return repo.GetOfficer(ctx, db, id)
}

// caseStoreShim adapts the repository free functions to services.CaseStore.
type caseStoreShim struct{}

func (caseStoreShim) GetComplaint(ctx context.Context, db *gorm.DB, id string) (*domain.Complaint, error) {
	return repo.GetComplaint(ctx, db, id)
}

func (caseStoreShim) UpdateComplaintStatus(ctx context.Context, db *gorm.DB, id, status string) (string, error) {
	return repo.UpdateComplaintStatus(ctx, db, id, status)
}

// officerRepoShim adapts the repository free functions to
// services.OfficerRepo.
type officerRepoShim struct{}

func (officerRepoShim) UpdateDeviceToken(ctx context.Context, db *gorm.DB, officerID, token string) error {
	return repo.UpdateDeviceToken(ctx, db, officerID, token)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured request logging
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per officer/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, idp identity.Provider, pusher push.Provider, toasts *toast.Queue, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, adminID, complaintID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, adminID, complaintID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per officer/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByOfficerOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Officer-ID", "X-Complaint-ID", middleware.HeaderIdempotencyKey}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/providers
	adminSvc := services.NewAdminService(db, adminStoreShim{}, idp)
	dispatchSvc := services.NewDispatchService(db, dispatchStoreShim{}, pusher)
	caseSvc := services.NewCaseService(db, caseStoreShim{}, dispatchSvc)
	notifSvc := services.NewNotificationService(db, notificationRepoShim{})
	officerSvc := services.NewOfficerService(db, officerRepoShim{})

	h := handlers.New(adminSvc, caseSvc, notifSvc, officerSvc)
	h.DB = db
	h.IdempotencyTTL = cfg.IdempotencyTTL
	h.Toasts = toasts
	h.NotifyStore = notifSvc
	h.PollInterval = cfg.NotifyPollInterval

	// Public API (bearer-token protected)
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Auth(idp))
	{
		// Admin
		admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.DELETE("/admin/officer", h.DeleteOfficer)
			admin.POST("/officers/assign", h.AssignCase)
			admin.PATCH("/complaints/:id/status", h.UpdateComplaintStatus)
		}

		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/count", h.CountNotifications)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)
		api.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		api.GET("/notifications/stream", h.StreamUnread)

		// Officers
		api.POST("/officers/device-token", h.RegisterDeviceToken)

		// Toasts
		api.GET("/toasts/stream", h.StreamToasts)
		api.POST("/toasts/:id/dismiss", h.DismissToast)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
