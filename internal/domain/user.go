package domain

import "time"

// Roles recognized by the authorization engine. The set is closed: every
// decision is taken from the single table in the authz package.
const (
	RoleAdmin  = "admin"  // Platform administrator
	RoleOwner  = "owner"  // Manages a Tenant's properties
	RoleRenter = "renter" // Occupies a single unit
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`      // Primary key
	Username     string    `gorm:"unique;not null"` // Unique username
	Email        string    `gorm:"unique;not null"` // Unique email address
	PasswordHash string    `gorm:"not null"`        // Bcrypt password hash
	Role         string    `gorm:"default:renter"`  // Role: admin, owner or renter
	Phone        string    // Contact phone number
	TenantID     *uint     // Set when role=owner, the Tenant they administer
	UnitID       *uint     // Set when role=renter, the Unit they occupy (at most one)
	CreatedAt    time.Time // Timestamp of creation
	UpdatedAt    time.Time // Timestamp of last update
}
