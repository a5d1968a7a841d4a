// Package domain defines the persistence models for officers, complaints,
// case assignments, and notifications. These types are mapped with GORM and
// form the core data layer of the case-management backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Officer roles recognized by the authorization layer.
const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// Complaint lifecycle statuses. Transitions between them are what trigger
// push dispatch.
const (
	ComplaintStatusOpen     = "open"
	ComplaintStatusAssigned = "assigned"
	ComplaintStatusResolved = "resolved"
	ComplaintStatusClosed   = "closed"
)

// Officer represents a field officer or administrator account. The durable
// row here is the source of truth for "officer exists"; FirebaseUID links the
// row to its identity-provider account and may be empty when the officer was
// never provisioned on the identity side.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / BadgeNumber / Email: identity fields echoed in deletion outcomes.
//   - Role: "admin" or "officer".
//   - FirebaseUID: optional identity-provider UID (courtesy cleanup target).
//   - DeviceToken: optional push registration token for out-of-band delivery.
//   - Available: whether the officer can currently take new assignments.
//   - ActiveCases: running count of open assignments, maintained by the
//     atomic assignment procedure.
type Officer struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"         gorm:"type:varchar(128);not null"`
	BadgeNumber string         `json:"badge_number" gorm:"type:varchar(32);not null;uniqueIndex"`
	Email       string         `json:"email"        gorm:"type:varchar(128);not null;uniqueIndex"`
	Role        string         `json:"role"         gorm:"type:varchar(16);not null;default:'officer';check:role IN ('admin','officer')"`
	FirebaseUID string         `json:"-"            gorm:"type:varchar(128);index"`
	DeviceToken string         `json:"-"            gorm:"type:varchar(512)"`
	Available   bool           `json:"available"    gorm:"not null;default:true"`
	ActiveCases int            `json:"active_cases" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Officer.
func (Officer) TableName() string { return "officers" }

// Complaint represents a cybercrime complaint record. Only the fields the
// coordination core touches are modeled here; the full intake form lives
// outside this service.
type Complaint struct {
	ID                string         `json:"id"                  gorm:"type:char(36);primaryKey"`
	ComplaintNumber   string         `json:"complaint_number"    gorm:"type:varchar(32);not null;uniqueIndex"`
	Title             string         `json:"title"               gorm:"type:varchar(255);not null"`
	Status            string         `json:"status"              gorm:"type:varchar(16);not null;default:'open';check:status IN ('open','assigned','resolved','closed')"`
	AssignedOfficerID *string        `json:"assigned_officer_id" gorm:"type:char(36);index"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-"                   gorm:"index"`
}

// TableName returns the database table name for Complaint.
func (Complaint) TableName() string { return "complaints" }

// CaseAssignment is the audit row written by the atomic assignment procedure:
// one row per successful assignment, carrying who assigned, who received, and
// the note recorded at assignment time.
type CaseAssignment struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	ComplaintID string         `json:"complaint_id" gorm:"type:char(36);not null;index"`
	OfficerID   string         `json:"officer_id"   gorm:"type:char(36);not null;index"`
	AdminID     string         `json:"admin_id"     gorm:"type:char(36);not null"`
	Notes       string         `json:"notes"        gorm:"type:text;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	// Complaint is the assigned case. Assignments are cascade-deleted if
	// the underlying complaint is removed.
	Complaint Complaint `json:"-" gorm:"foreignKey:ComplaintID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CaseAssignment.
func (CaseAssignment) TableName() string { return "case_assignments" }

// Notification kinds stored on in-app notification rows.
const (
	NotificationTypeStatusChange = "status_change"
	NotificationTypeAssignment   = "assignment"
)

// Notification is the durable in-app notification record, scoped to one
// officer and mutated only by read-state transitions. Rows are retained until
// explicitly deleted by a collaborator outside this core.
type Notification struct {
	ID              string         `json:"id"               gorm:"type:char(36);primaryKey"`
	OfficerID       string         `json:"officer_id"       gorm:"type:char(36);not null;index:idx_officer_unread,priority:1"`
	ComplaintNumber string         `json:"complaint_number" gorm:"type:varchar(32);not null"`
	Message         string         `json:"message"          gorm:"type:text;not null"`
	Type            string         `json:"type"             gorm:"type:varchar(32);not null"`
	Read            bool           `json:"read"             gorm:"not null;default:false;index:idx_officer_unread,priority:2"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                gorm:"index"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
