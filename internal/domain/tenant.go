package domain

import "time"

// Tenant Model (business owner account, not a renter)
type Tenant struct {
	ID               uint      `gorm:"primaryKey"`              // Primary key
	BusinessName     string    `gorm:"not null"`                // Business display name
	ContactEmail     string    `gorm:"unique;not null"`         // Globally unique contact email
	ContactPhone     string    // Contact phone number
	BusinessAddress  string    // Business street address
	SubscriptionPlan string    `gorm:"default:basic"`           // Plan: basic, pro, enterprise
	IsActive         bool      `gorm:"not null;default:true"`   // False suspends every owner operation on this chain
	CreatedAt        time.Time // Timestamp of creation
	UpdatedAt        time.Time // Timestamp of last update

	Properties []Property `gorm:"foreignKey:OwnerID"` // Properties owned by this tenant
}
