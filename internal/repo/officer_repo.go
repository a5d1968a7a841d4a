// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Officer
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an officer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateOfficer inserts a new officer row. The officer ID is a randomly
// generated UUID (string), and CreatedAt is set to UTC.
func CreateOfficer(ctx context.Context, db *gorm.DB, o *domain.Officer) (*domain.Officer, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// GetOfficer fetches a single officer by ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetOfficer(ctx context.Context, db *gorm.DB, id string) (*domain.Officer, error) {
	var o domain.Officer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOfficer removes the officer row identified by id. If no rows are
// affected (officer missing), it returns ErrNotFound. On DB error (e.g. a
// foreign-key violation from open assignments), the raw error is returned.
func DeleteOfficer(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Officer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateDeviceToken stores (or clears) the push registration token for an
// officer. Returns ErrNotFound when the officer does not exist.
func UpdateDeviceToken(ctx context.Context, db *gorm.DB, id, token string) error {
	res := db.WithContext(ctx).
		Model(&domain.Officer{}).
		Where("id = ?", id).
		Update("device_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOfficers returns all officers ordered by name. It returns an empty
// slice when there are none.
func ListOfficers(ctx context.Context, db *gorm.DB) ([]domain.Officer, error) {
	var out []domain.Officer
	err := db.WithContext(ctx).
		Order("name asc").
		Find(&out).Error
	return out, err
}
