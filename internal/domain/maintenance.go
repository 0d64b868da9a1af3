package domain

import (
	"time"

	"gorm.io/gorm" // GORM ORM library
)

// Maintenance request statuses
const (
	MaintenanceOpen       = "open"        // Submitted, not yet worked on
	MaintenanceInProgress = "in_progress" // Being worked on
	MaintenanceCompleted  = "completed"   // Resolved
)

// MaintenanceRequest Model
type MaintenanceRequest struct {
	ID          uint       `gorm:"primaryKey"`      // Primary key
	TenantID    uint       `gorm:"not null;index"`  // Denormalized owning tenant
	PropertyID  uint       `gorm:"not null;index"`  // Denormalized property link
	UnitID      uint       `gorm:"not null;index"`  // Unit the request concerns
	UserID      uint       `gorm:"not null"`        // Requesting user
	Title       string     `gorm:"not null"`        // Short summary
	Description string     `gorm:"not null"`        // Full description
	Category    string     `gorm:"not null"`        // Category: plumbing, electrical, hvac, appliance, general
	Priority    string     `gorm:"default:medium"`  // Priority: low, medium, high
	Status      string     `gorm:"default:open"`    // Status: open, in_progress, completed
	CreatedAt   time.Time  // Timestamp of creation
	ResolvedAt  *time.Time // Set when the request is completed
}

// Kind returns the entity kind for authorization
func (MaintenanceRequest) Kind() EntityKind { return KindMaintenance }

// Chain resolves the ownership chain of the request
func (m MaintenanceRequest) Chain() Chain {
	propertyID := m.PropertyID // Copy for the pointer
	unitID := m.UnitID         // Copy for the pointer
	return Chain{TenantID: m.TenantID, PropertyID: &propertyID, UnitID: &unitID}
}

// DuplicateWhere matches a resubmission of the same request: same unit and
// title within the last 24 hours.
func (m MaintenanceRequest) DuplicateWhere(tx *gorm.DB) *gorm.DB {
	return tx.Where("unit_id = ? AND title = ? AND created_at > ?",
		m.UnitID, m.Title, time.Now().Add(-24*time.Hour))
}
