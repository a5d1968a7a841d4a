// Package services – CaseService
//
// This file implements the complaint status transition that triggers push
// dispatch. The status update is the primary effect and must persist even
// when notification delivery is degraded or impossible; the dispatcher's
// outcome is attached to the result for the caller's benefit, never allowed
// to fail the transition.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/repo"
)

// validStatuses is the set of accepted complaint statuses.
var validStatuses = map[string]struct{}{
	domain.ComplaintStatusOpen:     {},
	domain.ComplaintStatusAssigned: {},
	domain.ComplaintStatusResolved: {},
	domain.ComplaintStatusClosed:   {},
}

// CaseStore defines the datastore contract required by CaseService.
type CaseStore interface {
	// GetComplaint fetches a complaint row by ID.
	GetComplaint(ctx context.Context, db *gorm.DB, id string) (*domain.Complaint, error)

	// UpdateComplaintStatus transitions a complaint and returns the
	// previous status.
	UpdateComplaintStatus(ctx context.Context, db *gorm.DB, id, status string) (string, error)
}

// StatusChangeResult reports a completed transition and the notification
// outcome that followed it. Dispatch is nil when the complaint has no
// assigned officer to notify.
type StatusChangeResult struct {
	Complaint *domain.Complaint `json:"complaint"`
	OldStatus string            `json:"old_status"`
	Dispatch  *DispatchResult   `json:"dispatch,omitempty"`
}

// CaseService owns complaint status transitions.
type CaseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the datastore-side repository.
	Store CaseStore
	// Dispatch delivers the resulting notification; optional.
	Dispatch *DispatchService
}

// NewCaseService constructs a CaseService.
func NewCaseService(db *gorm.DB, store CaseStore, dispatch *DispatchService) *CaseService {
	return &CaseService{DB: db, Store: store, Dispatch: dispatch}
}

// TransitionStatus moves a complaint to newStatus and, when the complaint is
// tracked by an assigned officer, dispatches the notification. The returned
// error reflects only the transition itself: dispatch degradation is
// reported inside the result.
func (s *CaseService) TransitionStatus(ctx context.Context, complaintID, newStatus string) (*StatusChangeResult, error) {
	if _, ok := validStatuses[newStatus]; !ok {
		return nil, ErrInvalidRequest
	}

	c, err := s.Store.GetComplaint(ctx, s.DB, complaintID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, &UpstreamError{Provider: "datastore", Err: err}
	}

	old, err := s.Store.UpdateComplaintStatus(ctx, s.DB, complaintID, newStatus)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, &UpstreamError{Provider: "datastore", Err: err}
	}
	c.Status = newStatus

	res := &StatusChangeResult{Complaint: c, OldStatus: old}

	// Notification is best-effort: the transition has already persisted.
	if s.Dispatch != nil && c.AssignedOfficerID != nil && *c.AssignedOfficerID != "" && old != newStatus {
		if dr, derr := s.Dispatch.CaseStatusChanged(ctx, *c.AssignedOfficerID, c.ComplaintNumber, old, newStatus); derr == nil {
			res.Dispatch = dr
		}
	}
	return res, nil
}
