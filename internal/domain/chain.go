package domain

// EntityKind identifies an entity type in authorization decisions
type EntityKind string

// Entity kinds known to the authorization engine
const (
	KindTenant       EntityKind = "tenant"              // Business owner account
	KindProperty     EntityKind = "property"            // Rental property
	KindUnit         EntityKind = "unit"                // Rental unit within a property
	KindPayment      EntityKind = "payment"             // Rent payment
	KindMaintenance  EntityKind = "maintenance_request" // Maintenance request
	KindNotification EntityKind = "notification"        // Notice posted by an owner
	KindDocument     EntityKind = "document"            // Uploaded document
)

// Chain is the resolved ownership path Tenant -> Property -> Unit for an entity
type Chain struct {
	TenantID   uint  // Owning business account, always set
	PropertyID *uint // Property link, nil for tenant-level entities
	UnitID     *uint // Unit link, nil for property-level entities
}

// Equal reports whether two chains point at the same ownership path
func (c Chain) Equal(o Chain) bool {
	// Compare tenant ids first
	if c.TenantID != o.TenantID {
		return false
	}
	// Compare optional property links
	if !uintPtrEqual(c.PropertyID, o.PropertyID) {
		return false
	}
	// Compare optional unit links
	return uintPtrEqual(c.UnitID, o.UnitID)
}

// uintPtrEqual compares two optional ids by value
func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b // Equal only when both are nil
	}
	return *a == *b // Compare pointed-to values
}

// ScopedEntity is implemented by every entity that belongs to exactly one
// ownership chain. The chain is fixed at creation and never changes.
type ScopedEntity interface {
	Kind() EntityKind // Entity kind for the decision table
	Chain() Chain     // Ownership chain from the denormalized scope columns
}
