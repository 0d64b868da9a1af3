package authz

import (
	"fmt"

	"rentalhub/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Graph answers ownership questions over the chain Tenant -> Property ->
// Unit -> User by following foreign keys. It is a query-time resolver, not a
// live object graph: the unit's occupant stays a weak reference.
type Graph struct {
	db *gorm.DB // Persisted store
}

// NewGraph creates a tenancy graph over the store
func NewGraph(db *gorm.DB) *Graph {
	return &Graph{db: db}
}

// ChainOfUnit resolves a unit to its full ownership chain by walking
// Unit -> Property -> Tenant. A dangling link means the data is corrupt and
// is reported as ErrBrokenChain, never as a normal denial.
func (g *Graph) ChainOfUnit(unitID uint) (domain.Chain, error) {
	var unit domain.Unit // The unit itself
	if err := g.db.First(&unit, unitID).Error; err != nil {
		return domain.Chain{}, fmt.Errorf("%w: unit %d: %v", ErrBrokenChain, unitID, err)
	}
	var property domain.Property // The parent property
	if err := g.db.First(&property, unit.PropertyID).Error; err != nil {
		return domain.Chain{}, fmt.Errorf("%w: unit %d references missing property %d", ErrBrokenChain, unitID, unit.PropertyID)
	}
	var tenant domain.Tenant // The owning business account
	if err := g.db.First(&tenant, property.OwnerID).Error; err != nil {
		return domain.Chain{}, fmt.Errorf("%w: property %d references missing tenant %d", ErrBrokenChain, property.ID, property.OwnerID)
	}
	propertyID := property.ID // Copy for the pointer
	return domain.Chain{TenantID: tenant.ID, PropertyID: &propertyID, UnitID: &unitID}, nil
}

// ChainOfProperty resolves a property to its chain
func (g *Graph) ChainOfProperty(propertyID uint) (domain.Chain, error) {
	var property domain.Property // The property itself
	if err := g.db.First(&property, propertyID).Error; err != nil {
		return domain.Chain{}, fmt.Errorf("%w: property %d: %v", ErrBrokenChain, propertyID, err)
	}
	var tenant domain.Tenant // The owning business account
	if err := g.db.First(&tenant, property.OwnerID).Error; err != nil {
		return domain.Chain{}, fmt.Errorf("%w: property %d references missing tenant %d", ErrBrokenChain, propertyID, property.OwnerID)
	}
	return property.Chain(), nil
}

// ChainOf resolves any scoped entity through its denormalized scope columns.
// Every scoped entity has exactly one chain; a zero tenant id is corrupt data.
func (g *Graph) ChainOf(entity domain.ScopedEntity) (domain.Chain, error) {
	chain := entity.Chain() // Read the denormalized columns
	if chain.TenantID == 0 {
		return domain.Chain{}, fmt.Errorf("%w: %s has no owning tenant", ErrBrokenChain, entity.Kind())
	}
	return chain, nil
}

// IsDescendant reports whether the identity sits inside the chain: admins
// always, owners on tenant match, renters on unit match.
func IsDescendant(identity Identity, chain domain.Chain) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true // Admins span every chain
	case domain.RoleOwner:
		return identity.TenantID != nil && *identity.TenantID == chain.TenantID
	case domain.RoleRenter:
		return identity.UnitID != nil && chain.UnitID != nil && *identity.UnitID == *chain.UnitID
	}
	return false // Unknown roles are outside every chain
}
