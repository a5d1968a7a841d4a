// Package services – NotificationService
//
// This file implements the officer-scoped notification operations consumed
// by the HTTP layer and by the per-session unread tracker: unread listing
// and counting, paginated history, and read-state transitions. It enforces
// pagination defaults and ownership scoping; persistence lives in the repo
// layer.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/repo"
)

// NotificationRepo defines the repository contract required by
// NotificationService.
type NotificationRepo interface {
	// ListUnread returns all unread notifications for an officer.
	ListUnread(ctx context.Context, db *gorm.DB, officerID string) ([]domain.Notification, error)

	// CountUnread returns the number of unread notifications for an officer.
	CountUnread(ctx context.Context, db *gorm.DB, officerID string) (int64, error)

	// ListNotificationsPage returns a page of an officer's notifications.
	ListNotificationsPage(ctx context.Context, db *gorm.DB, officerID string, offset, limit int) ([]domain.Notification, error)

	// CountNotifications returns the total for pagination.
	CountNotifications(ctx context.Context, db *gorm.DB, officerID string) (int64, error)

	// MarkRead flips one notification to read, enforcing ownership.
	MarkRead(ctx context.Context, db *gorm.DB, officerID, notificationID string) error

	// MarkAllRead flips every unread notification for an officer.
	MarkAllRead(ctx context.Context, db *gorm.DB, officerID string) (int64, error)
}

// NotificationService provides officer-scoped notification operations.
// It also satisfies the unread tracker's store contract.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the notification repository.
	Repo NotificationRepo
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, r NotificationRepo) *NotificationService {
	return &NotificationService{DB: db, Repo: r}
}

// ListUnread returns all unread notifications for officerID, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, officerID string) ([]domain.Notification, error) {
	return s.Repo.ListUnread(ctx, s.DB, officerID)
}

// CountUnread returns the unread notification count for officerID.
func (s *NotificationService) CountUnread(ctx context.Context, officerID string) (int64, error) {
	return s.Repo.CountUnread(ctx, s.DB, officerID)
}

// ListPage returns a page of officerID's notifications and the total count.
// Invalid page/pageSize values fall back to defaults.
func (s *NotificationService) ListPage(ctx context.Context, officerID string, page, pageSize int) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountNotifications(ctx, s.DB, officerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Notification{}, 0, nil
	}

	items, err := s.Repo.ListNotificationsPage(ctx, s.DB, officerID, offset, pageSize)
	return items, total, err
}

// MarkRead flips one of officerID's notifications to read. Returns
// ErrNotificationNotFound when the row is missing, already read, or not
// owned by officerID.
func (s *NotificationService) MarkRead(ctx context.Context, officerID, notificationID string) error {
	err := s.Repo.MarkRead(ctx, s.DB, officerID, notificationID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead flips every unread notification for officerID and returns the
// number of rows affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, officerID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, s.DB, officerID)
}
