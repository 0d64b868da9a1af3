package authz

import (
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/utils"  // JWT utility functions

	"gorm.io/gorm" // GORM ORM library
)

// Identity is the authenticated actor. It is passed explicitly into every
// core call; there is no process-wide current-user state.
type Identity struct {
	UserID     uint   // Authenticated user id
	Role       string // Role: admin, owner or renter
	TenantID   *uint  // Owners: the Tenant they administer; renters: resolved through their unit
	UnitID     *uint  // Set for renters, the Unit they occupy
	PropertyID *uint  // Set for renters, resolved through their unit
}

// Resolver turns a session token into an Identity. The user row is read
// fresh on every call so there is no permission staleness beyond the store's
// own read consistency.
type Resolver struct {
	db     *gorm.DB // Persisted store
	secret string   // JWT signing secret
}

// NewResolver creates an identity resolver
func NewResolver(db *gorm.DB, secret string) *Resolver {
	return &Resolver{db: db, secret: secret}
}

// Resolve validates the token and loads the actor's current role and chain
// bindings. Any failure collapses into ErrUnauthenticated.
func (r *Resolver) Resolve(token string) (Identity, error) {
	claims, err := utils.ParseJWT(token, r.secret) // Parse and validate the token
	if err != nil {
		return Identity{}, ErrUnauthenticated // Invalid or expired token
	}
	var user domain.User // Fetch the user row fresh
	if err := r.db.First(&user, claims.UserID).Error; err != nil {
		return Identity{}, ErrUnauthenticated // Token refers to a deleted user
	}
	identity := Identity{
		UserID:   user.ID,       // Authenticated user id
		Role:     user.Role,     // Current role from the store
		TenantID: user.TenantID, // Owner binding
		UnitID:   user.UnitID,   // Renter binding
	}
	// A renter's property and tenant are resolved through their unit so scope
	// filters on property-level and tenant-level records stay single indexed
	// comparisons.
	if user.Role == domain.RoleRenter && user.UnitID != nil {
		var unit domain.Unit // The occupied unit
		if err := r.db.First(&unit, *user.UnitID).Error; err == nil {
			propertyID := unit.PropertyID // Copy for the pointer
			tenantID := unit.TenantID     // Copy for the pointer
			identity.PropertyID = &propertyID
			identity.TenantID = &tenantID
		}
	}
	return identity, nil
}
