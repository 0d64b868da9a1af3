package domain

import (
	"errors"
	"time"

	"gorm.io/gorm" // GORM ORM library
)

// ErrPropertyFull is returned when a property already holds its declared number of units
var ErrPropertyFull = errors.New("property has no capacity for another unit")

// Unit Model
type Unit struct {
	ID         uint      `gorm:"primaryKey"`                                  // Primary key
	UnitNumber string    `gorm:"not null;uniqueIndex:idx_unit_number_per_property"` // Unique within its property
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_unit_number_per_property"` // Foreign key to Property
	TenantID   uint      `gorm:"not null;index"`                              // Denormalized owning tenant for scope filtering
	RentAmount float64   `gorm:"not null;default:0"`                          // Monthly rent, non-negative
	IsOccupied bool      `gorm:"not null;default:false"`                      // Occupancy flag
	CreatedAt  time.Time // Timestamp of creation
	UpdatedAt  time.Time // Timestamp of last update
}

// Kind returns the entity kind for authorization
func (Unit) Kind() EntityKind { return KindUnit }

// Chain resolves the ownership chain of the unit
func (u Unit) Chain() Chain {
	propertyID := u.PropertyID // Copy for the pointer
	unitID := u.ID             // Copy for the pointer
	return Chain{TenantID: u.TenantID, PropertyID: &propertyID, UnitID: &unitID}
}

// BeforeCreate enforces the property capacity invariant inside the write transaction
func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	var property Property // The parent property
	if err := tx.First(&property, u.PropertyID).Error; err != nil {
		return err // Dangling property reference, abort the create
	}
	var count int64 // Units already present under the property
	if err := tx.Model(&Unit{}).Where("property_id = ?", u.PropertyID).Count(&count).Error; err != nil {
		return err
	}
	// Reject when the property is already at declared capacity
	if count >= int64(property.TotalUnits) {
		return ErrPropertyFull
	}
	return nil
}

// BeforeDelete vacates the occupant. The occupant is a weak reference, so
// deleting a unit clears the user's unit link instead of cascading.
func (u *Unit) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&User{}).Where("unit_id = ?", u.ID).Update("unit_id", nil).Error
}
