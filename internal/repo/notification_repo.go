// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Notification model: creation by the push dispatcher and read-state
// transitions driven by the unread tracker.
//
// Error semantics match the rest of the package: ErrNotFound for missing
// rows, raw gorm errors otherwise. Read-state updates are scoped by officer
// so one officer can never flip another's notifications.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
)

// CreateNotification inserts a new unread notification row for an officer.
func CreateNotification(ctx context.Context, db *gorm.DB, officerID, complaintNumber, message, typ string) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:              uuid.NewString(),
		OfficerID:       officerID,
		ComplaintNumber: complaintNumber,
		Message:         message,
		Type:            typ,
		Read:            false,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// ListUnread returns all unread notifications for an officer, newest first.
func ListUnread(ctx context.Context, db *gorm.DB, officerID string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("officer_id = ? AND read = ?", officerID, false).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountUnread returns the number of unread notifications for an officer.
func CountUnread(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("officer_id = ? AND read = ?", officerID, false).
		Count(&total).Error
	return total, err
}

// ListNotificationsPage returns a paginated slice of an officer's
// notifications (read and unread), newest first. Use CountNotifications for
// pagination metadata.
func ListNotificationsPage(ctx context.Context, db *gorm.DB, officerID string, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("officer_id = ?", officerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountNotifications returns the total number of notifications for an officer.
func CountNotifications(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("officer_id = ?", officerID).
		Count(&total).Error
	return total, err
}

// MarkRead flips one notification to read, enforcing officer ownership.
// Returns ErrNotFound when the row is missing, already read, or owned by a
// different officer.
func MarkRead(ctx context.Context, db *gorm.DB, officerID, notificationID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND officer_id = ? AND read = ?", notificationID, officerID, false).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for an officer to read in a
// single bulk update and returns the number of rows affected. Zero affected
// rows is not an error.
func MarkAllRead(ctx context.Context, db *gorm.DB, officerID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("officer_id = ? AND read = ?", officerID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
