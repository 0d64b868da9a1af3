package authz

import (
	"rentalhub/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Action is what the actor wants to do with the target
type Action string

// Actions known to the decision table
const (
	ActionRead   Action = "read"   // List or get
	ActionCreate Action = "create" // Create a new entity
	ActionUpdate Action = "update" // Modify an existing entity
	ActionDelete Action = "delete" // Remove an existing entity
)

// Decision is the outcome of an authorization check. An allowed decision may
// carry a scope filter that every list/get query must be intersected with.
type Decision struct {
	Scope  func(*gorm.DB) *gorm.DB // Query restriction, nil means unrestricted
	Reason error                   // Denial reason, nil means allowed
}

// Allowed reports whether the operation may proceed
func (d Decision) Allowed() bool { return d.Reason == nil }

// Allow builds a permitted decision carrying a scope filter
func Allow(scope func(*gorm.DB) *gorm.DB) Decision {
	return Decision{Scope: scope}
}

// Deny builds a forbidden decision carrying the reason
func Deny(reason error) Decision {
	return Decision{Reason: reason}
}

// Engine evaluates the role decision table. Decisions are computed fresh per
// request from current persisted data; nothing is cached.
type Engine struct {
	db *gorm.DB // Persisted store, for the tenant activity check
}

// NewEngine creates an authorization engine over the store
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Authorize evaluates (identity, action, kind, chain) against the decision
// table. Rules are ordered by role precedence and the first match wins; an
// action no rule matches is denied. For list queries the chain is nil and the
// returned scope filter carries the restriction instead.
func (e *Engine) Authorize(identity Identity, action Action, kind domain.EntityKind, chain *domain.Chain) Decision {
	switch identity.Role {
	case domain.RoleAdmin:
		return Allow(nil) // Admins act on everything, unfiltered
	case domain.RoleOwner:
		return e.authorizeOwner(identity, action, kind, chain)
	case domain.RoleRenter:
		return authorizeRenter(identity, action, kind, chain)
	}
	return Deny(ErrInsufficientRole) // Default deny for unknown roles
}

// authorizeOwner covers the owner rows of the decision table. Owners operate
// on their own chain only, and only while their business account is active.
func (e *Engine) authorizeOwner(identity Identity, action Action, kind domain.EntityKind, chain *domain.Chain) Decision {
	if identity.TenantID == nil {
		return Deny(ErrInsufficientRole) // Owner without a tenant binding
	}
	var tenant domain.Tenant // Activity is read fresh on every decision
	if err := e.db.First(&tenant, *identity.TenantID).Error; err != nil {
		return Deny(ErrBrokenChain) // Owner bound to a missing tenant row
	}
	if !tenant.IsActive {
		return Deny(ErrInactiveTenant) // Suspended accounts lose all owner operations
	}
	switch kind {
	case domain.KindProperty, domain.KindUnit, domain.KindPayment,
		domain.KindMaintenance, domain.KindNotification, domain.KindDocument:
		// A capable owner targeting another chain is a probing attempt, not a
		// missing capability.
		if chain != nil && chain.TenantID != *identity.TenantID {
			return Deny(ErrCrossTenantAccess)
		}
		switch action {
		case ActionRead, ActionCreate, ActionUpdate:
			return Allow(ownerScope(kind, *identity.TenantID))
		case ActionDelete:
			// Payments and maintenance requests are audit records, owners
			// cannot delete them.
			if kind == domain.KindPayment || kind == domain.KindMaintenance {
				return Deny(ErrInsufficientRole)
			}
			return Allow(ownerScope(kind, *identity.TenantID))
		}
	}
	return Deny(ErrInsufficientRole) // Default deny, including tenant management
}

// ownerScope restricts a query to the owner's chain. Properties key on their
// owner column, everything below carries a denormalized tenant id.
func ownerScope(kind domain.EntityKind, tenantID uint) func(*gorm.DB) *gorm.DB {
	column := "tenant_id" // Denormalized scope column
	if kind == domain.KindProperty {
		column = "owner_id" // Properties reference the tenant directly
	}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(column+" = ?", tenantID)
	}
}

// authorizeRenter covers the renter rows of the decision table. Renters read
// their own unit's records and create payments and maintenance requests for
// their own unit; everything else is denied.
func authorizeRenter(identity Identity, action Action, kind domain.EntityKind, chain *domain.Chain) Decision {
	if identity.UnitID == nil {
		return Deny(ErrInsufficientRole) // Renter not bound to a unit yet
	}
	switch kind {
	case domain.KindPayment, domain.KindMaintenance:
		switch action {
		case ActionRead:
			unitID := *identity.UnitID // Copy for the closure
			return Allow(func(tx *gorm.DB) *gorm.DB {
				return tx.Where("unit_id = ?", unitID)
			})
		case ActionCreate:
			// The target must be the renter's own unit, a mismatch is a
			// cross-chain submission against a deliberately chosen target.
			if chain == nil || chain.UnitID == nil || *chain.UnitID != *identity.UnitID {
				return Deny(ErrCrossTenantAccess)
			}
			return Allow(nil)
		}
	case domain.KindNotification, domain.KindDocument:
		// These records carry no unit id; the renter's view is their property
		// plus their tenant's tenant-wide records, narrowed to those addressed
		// to renters or to everyone.
		if action == ActionRead {
			if identity.PropertyID == nil || identity.TenantID == nil {
				return Deny(ErrInsufficientRole)
			}
			propertyID := *identity.PropertyID // Copy for the closure
			tenantID := *identity.TenantID     // Copy for the closure
			return Allow(func(tx *gorm.DB) *gorm.DB {
				return tx.Where("(property_id = ? OR (property_id IS NULL AND tenant_id = ?)) AND (target_role IS NULL OR target_role = ?)",
					propertyID, tenantID, domain.RoleRenter)
			})
		}
	}
	return Deny(ErrInsufficientRole) // Default deny, including property and unit management
}
