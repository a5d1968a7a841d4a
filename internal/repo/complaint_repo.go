// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Complaint
// model, including the atomic case-assignment procedure.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
)

// AssignOutcome is the structured payload returned by AssignComplaint. A
// well-formed negative business result (officer unavailable, case closed) is
// reported through Success=false + Reason on a nil error: callers must treat
// it differently from a structural DB error.
type AssignOutcome struct {
	Success         bool   `json:"success"`
	Reason          string `json:"reason,omitempty"`
	AssignmentID    string `json:"assignment_id,omitempty"`
	OfficerName     string `json:"officer_name,omitempty"`
	ComplaintNumber string `json:"complaint_number,omitempty"`
}

// CreateComplaint inserts a new complaint row.
func CreateComplaint(ctx context.Context, db *gorm.DB, c *domain.Complaint) (*domain.Complaint, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.ComplaintStatusOpen
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetComplaint fetches a complaint by ID. Returns ErrNotFound when absent.
func GetComplaint(ctx context.Context, db *gorm.DB, id string) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateComplaintStatus transitions a complaint to a new status and returns
// the previous one. Returns ErrNotFound when the complaint does not exist.
func UpdateComplaintStatus(ctx context.Context, db *gorm.DB, id, status string) (previous string, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Complaint
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		previous = c.Status
		return tx.Model(&domain.Complaint{}).
			Where("id = ?", id).
			Update("status", status).Error
	})
	return previous, err
}

// GetAssignment fetches a case assignment by ID together with its complaint
// number and officer name, for serving idempotent replays.
func GetAssignment(ctx context.Context, db *gorm.DB, id string) (*AssignOutcome, error) {
	var a domain.CaseAssignment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	var c domain.Complaint
	if err := db.WithContext(ctx).Where("id = ?", a.ComplaintID).First(&c).Error; err != nil {
		return nil, err
	}
	var o domain.Officer
	if err := db.WithContext(ctx).Where("id = ?", a.OfficerID).First(&o).Error; err != nil {
		return nil, err
	}
	return &AssignOutcome{
		Success:         true,
		AssignmentID:    a.ID,
		OfficerName:     o.Name,
		ComplaintNumber: c.ComplaintNumber,
	}, nil
}

// AssignComplaint atomically assigns a complaint to an officer on behalf of
// an admin. It is the datastore-side "stored procedure" for assignment: the
// availability and lifecycle checks, the assignment audit row, the complaint
// status flip, and the officer case-count bump all happen in one transaction
// or not at all.
//
// Business refusals (unknown complaint/officer, officer unavailable, case
// already closed) are returned as a Success=false outcome with a Reason and a
// nil error. A non-nil error always means a structural DB failure.
func AssignComplaint(ctx context.Context, db *gorm.DB, complaintID, officerID, adminID, notes string) (*AssignOutcome, error) {
	out := &AssignOutcome{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Complaint
		if err := tx.Where("id = ?", complaintID).First(&c).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				out.Reason = "Complaint not found"
				return nil
			}
			return err
		}

		var o domain.Officer
		if err := tx.Where("id = ?", officerID).First(&o).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				out.Reason = "Officer not found"
				return nil
			}
			return err
		}

		if c.Status == domain.ComplaintStatusClosed {
			out.Reason = "Case already closed"
			return nil
		}
		if !o.Available {
			out.Reason = "Officer unavailable"
			return nil
		}

		a := &domain.CaseAssignment{
			ID:          uuid.NewString(),
			ComplaintID: c.ID,
			OfficerID:   o.ID,
			AdminID:     adminID,
			Notes:       notes,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Complaint{}).
			Where("id = ?", c.ID).
			Updates(map[string]any{
				"status":              domain.ComplaintStatusAssigned,
				"assigned_officer_id": o.ID,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Officer{}).
			Where("id = ?", o.ID).
			Update("active_cases", gorm.Expr("active_cases + 1")).Error; err != nil {
			return err
		}

		out.Success = true
		out.AssignmentID = a.ID
		out.OfficerName = o.Name
		out.ComplaintNumber = c.ComplaintNumber
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
