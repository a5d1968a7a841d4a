// Package services – DispatchService
//
// This file implements the push delivery dispatcher. On a case-status
// transition it records a durable in-app notification first, then makes a
// best-effort attempt at external push delivery. The durable record is the
// authoritative side effect: push-channel failure is reported in the result
// but never propagated as an error, so a status update persists even when
// delivery is impossible.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/push"
	"github.com/mkamau/cybercase-backend/internal/repo"
)

// Delivery skip/failure reasons reported in DispatchResult.Reason.
const (
	// ReasonNoToken means the officer has no registered device token;
	// external delivery was skipped, which is not an error.
	ReasonNoToken = "no-token"
)

// pushDispatches counts dispatch attempts by result: delivered, failed,
// or skipped.
var pushDispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_dispatch_total",
		Help: "Push delivery attempts by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(pushDispatches)
}

// DispatchResult reports one dispatch: whether the durable in-app record was
// written, whether external delivery happened, and how long the whole
// operation took. It lets callers distinguish "notification system degraded"
// (record written, push failed) from "notification system down".
type DispatchResult struct {
	// NotificationID identifies the durable in-app record.
	NotificationID string `json:"notification_id"`
	// Delivered reports whether the push provider accepted the message.
	Delivered bool `json:"delivered"`
	// Reason explains a false Delivered: ReasonNoToken or the provider error.
	Reason string `json:"reason,omitempty"`
	// ProviderMessageID is the push provider's identifier, when delivered.
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	// Elapsed is the total processing time for the dispatch.
	Elapsed time.Duration `json:"elapsed"`
}

// DispatchStore defines the datastore contract required by DispatchService.
type DispatchStore interface {
	// CreateNotification writes the durable in-app record.
	CreateNotification(ctx context.Context, db *gorm.DB, officerID, complaintNumber, message, typ string) (*domain.Notification, error)

	// GetOfficer resolves the target officer (for the device token).
	GetOfficer(ctx context.Context, db *gorm.DB, id string) (*domain.Officer, error)
}

// DispatchService records in-app notifications and attempts push delivery.
type DispatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the datastore-side repository.
	Store DispatchStore
	// Push is the external push provider.
	Push push.Provider
}

// NewDispatchService constructs a DispatchService.
func NewDispatchService(db *gorm.DB, store DispatchStore, p push.Provider) *DispatchService {
	return &DispatchService{DB: db, Store: store, Push: p}
}

// CaseStatusChanged handles a complaint status transition for the officer
// tracking the case.
//
// Order matters:
//  1. The in-app Notification row is written first; its failure is the only
//     fatal path (UpstreamError on the datastore).
//  2. The officer's device token is resolved; an absent token skips external
//     delivery with Reason=ReasonNoToken.
//  3. Provider delivery is attempted; any provider failure is captured in
//     the result, never returned as an error.
func (s *DispatchService) CaseStatusChanged(ctx context.Context, officerID, complaintNumber, oldStatus, newStatus string) (*DispatchResult, error) {
	tr := otel.Tracer("services/DispatchService")
	ctx, span := tr.Start(ctx, "CaseStatusChanged",
		trace.WithAttributes(
			attribute.String("officer.id", officerID),
			attribute.String("complaint.number", complaintNumber),
			attribute.String("status.new", newStatus),
		),
	)
	defer span.End()

	start := time.Now()
	message := fmt.Sprintf("Case %s status changed from %s to %s", complaintNumber, oldStatus, newStatus)

	// 1) Durable record first.
	n, err := s.Store.CreateNotification(ctx, s.DB, officerID, complaintNumber, message, domain.NotificationTypeStatusChange)
	if err != nil {
		return nil, &UpstreamError{Provider: "datastore", Err: err}
	}

	res := &DispatchResult{NotificationID: n.ID}

	// 2) Resolve the device token. A failed lookup degrades to a skip: the
	// authoritative record already exists.
	token := ""
	off, err := s.Store.GetOfficer(ctx, s.DB, officerID)
	switch {
	case err == nil:
		token = off.DeviceToken
	case errors.Is(err, repo.ErrNotFound):
		// Officer row vanished between the trigger and the lookup.
	default:
		log.Warn().Err(err).Str("officer_id", officerID).Msg("device token lookup failed; skipping push")
	}
	if token == "" {
		res.Reason = ReasonNoToken
		res.Elapsed = time.Since(start)
		pushDispatches.WithLabelValues("skipped").Inc()
		return res, nil
	}

	// 3) Best-effort external delivery.
	msgID, err := s.Push.Send(ctx, token, push.Payload{
		Title: "Case status updated",
		Body:  message,
		Data: map[string]string{
			"complaint_number": complaintNumber,
			"old_status":       oldStatus,
			"new_status":       newStatus,
			"type":             domain.NotificationTypeStatusChange,
		},
	})
	if err != nil {
		res.Reason = err.Error()
		res.Elapsed = time.Since(start)
		pushDispatches.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("officer_id", officerID).Msg("push delivery failed; in-app record retained")
		return res, nil
	}

	res.Delivered = true
	res.ProviderMessageID = msgID
	res.Elapsed = time.Since(start)
	pushDispatches.WithLabelValues("delivered").Inc()
	return res, nil
}
