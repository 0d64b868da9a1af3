package domain

import (
	"time"

	"gorm.io/gorm" // GORM ORM library
)

// Property Model
type Property struct {
	ID         uint      `gorm:"primaryKey"`       // Primary key
	Name       string    `gorm:"not null"`         // Property display name
	Address    string    `gorm:"not null"`         // Street address
	TotalUnits int       `gorm:"not null;default:1"` // Declared capacity, must stay >= count of units
	OwnerID    uint      `gorm:"not null"`         // Foreign key to Tenant, immutable after creation
	CreatedAt  time.Time // Timestamp of creation
	UpdatedAt  time.Time // Timestamp of last update

	Units []Unit `gorm:"foreignKey:PropertyID"` // Units within this property
}

// Kind returns the entity kind for authorization
func (Property) Kind() EntityKind { return KindProperty }

// Chain resolves the ownership chain of the property
func (p Property) Chain() Chain {
	id := p.ID // Copy for the pointer
	return Chain{TenantID: p.OwnerID, PropertyID: &id}
}

// BeforeDelete removes the property's units one by one so each unit's own
// delete hook vacates its occupant.
func (p *Property) BeforeDelete(tx *gorm.DB) error {
	var units []Unit // Units under this property
	if err := tx.Where("property_id = ?", p.ID).Find(&units).Error; err != nil {
		return err
	}
	for i := range units {
		if err := tx.Delete(&units[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
