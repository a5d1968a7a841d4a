// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed
// assignment request, keyed by (admin_id, complaint_id, key). It enables safe
// retries of POST /officers/assign by returning the originally produced
// assignment without re-executing the procedure.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	AdminID      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_admin_complaint_key,priority:1"`
	ComplaintID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_admin_complaint_key,priority:2"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_admin_complaint_key,priority:3"`
	AssignmentID string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
