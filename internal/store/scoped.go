package store

import (
	"errors"

	"rentalhub/internal/authz"  // Authorization engine
	"rentalhub/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Store is the scoped repository. Every read and write of a scoped entity
// goes through the engine first, so no caller can build a query that escapes
// its scope filter.
type Store struct {
	DB     *gorm.DB      // Persisted store
	Engine *authz.Engine // Decision table
	Graph  *authz.Graph  // Tenancy graph
}

// New wires a scoped repository over the store
func New(db *gorm.DB) *Store {
	return &Store{DB: db, Engine: authz.NewEngine(db), Graph: authz.NewGraph(db)}
}

// Query narrows a list beyond the mandatory scope filter. The scope filter is
// always applied first; a query can only shrink the visible set further.
type Query func(*gorm.DB) *gorm.DB

// duplicateGuard is implemented by entities with an idempotency guard. The
// guard runs inside the create transaction because it depends on the
// resolved scope.
type duplicateGuard interface {
	DuplicateWhere(tx *gorm.DB) *gorm.DB
}

// List returns every entity of T visible to the identity, intersected with
// the optional extra filters.
func List[T domain.ScopedEntity](s *Store, identity authz.Identity, filters ...Query) ([]T, error) {
	var zero T // Only used for its kind
	decision := s.Engine.Authorize(identity, authz.ActionRead, zero.Kind(), nil)
	if !decision.Allowed() {
		return nil, decision.Reason
	}
	tx := s.DB.Model(new(T)) // Base query
	if decision.Scope != nil {
		tx = tx.Scopes(decision.Scope) // Mandatory scope filter first
	}
	for _, filter := range filters {
		tx = filter(tx) // Caller filters can only narrow further
	}
	var out []T // Result set
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many entities of T the identity can see under the filters
func Count[T domain.ScopedEntity](s *Store, identity authz.Identity, filters ...Query) (int64, error) {
	var zero T // Only used for its kind
	decision := s.Engine.Authorize(identity, authz.ActionRead, zero.Kind(), nil)
	if !decision.Allowed() {
		return 0, decision.Reason
	}
	tx := s.DB.Model(new(T)) // Base query
	if decision.Scope != nil {
		tx = tx.Scopes(decision.Scope) // Mandatory scope filter first
	}
	for _, filter := range filters {
		tx = filter(tx)
	}
	var total int64 // Visible row count
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Get returns one entity by id. An entity that exists but sits outside the
// identity's scope comes back as ErrNotFound, indistinguishable from true
// absence, so ids cannot be probed across chains.
func Get[T domain.ScopedEntity](s *Store, identity authz.Identity, id uint) (T, error) {
	var entity T // Result holder
	decision := s.Engine.Authorize(identity, authz.ActionRead, entity.Kind(), nil)
	if !decision.Allowed() {
		return entity, decision.Reason
	}
	tx := s.DB // Base query
	if decision.Scope != nil {
		tx = tx.Scopes(decision.Scope) // Out-of-scope rows are simply not found
	}
	if err := tx.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity, authz.ErrNotFound // Absent and hidden look the same
		}
		return entity, err
	}
	return entity, nil
}

// Create stores a new entity after authorizing against its resolved chain.
// The whole write is one transaction: the owning tenant's activity is
// re-checked at commit time and the duplicate-submission guard runs against
// the same snapshot the insert sees.
func Create[T domain.ScopedEntity](s *Store, identity authz.Identity, entity *T) error {
	chain, err := s.Graph.ChainOf(*entity) // Chain is fixed at creation
	if err != nil {
		return err // Invariant violation, not a denial
	}
	decision := s.Engine.Authorize(identity, authz.ActionCreate, (*entity).Kind(), &chain)
	if !decision.Allowed() {
		return decision.Reason
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// The tenant may have been suspended between authorization and
		// commit; no write may land in an inactive chain.
		var tenant domain.Tenant
		if err := tx.First(&tenant, chain.TenantID).Error; err != nil {
			return authz.ErrBrokenChain
		}
		if !tenant.IsActive {
			return authz.ErrInactiveTenant
		}
		// Idempotency guard: reject an exact resubmission within the scope
		if guard, ok := any(*entity).(duplicateGuard); ok {
			var matches int64 // Existing rows matching the duplicate key
			if err := guard.DuplicateWhere(tx.Model(new(T))).Count(&matches).Error; err != nil {
				return err
			}
			if matches > 0 {
				return authz.ErrDuplicateSubmission
			}
		}
		return tx.Create(entity).Error // Rolled back in full on any failure
	})
}

// Update loads the entity, authorizes against its chain and applies the
// mutation inside one transaction. The actor chose the target, so an
// out-of-scope write carries its specific denial reason rather than hiding
// behind not-found.
func Update[T domain.ScopedEntity](s *Store, identity authz.Identity, id uint, apply func(*T) error) (T, error) {
	var entity T // Result holder
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrNotFound // Truly absent
			}
			return err
		}
		chain, err := s.Graph.ChainOf(entity) // Chain of the chosen target
		if err != nil {
			return err
		}
		decision := s.Engine.Authorize(identity, authz.ActionUpdate, entity.Kind(), &chain)
		if !decision.Allowed() {
			return decision.Reason
		}
		if err := ensureActiveForWrite(tx, identity, chain); err != nil {
			return err // Commit-time activity re-check
		}
		if err := apply(&entity); err != nil {
			return err // Caller mutation rejected
		}
		// No transition ever moves an entity to another chain
		if !entity.Chain().Equal(chain) {
			return authz.ErrCrossTenantAccess
		}
		return tx.Save(&entity).Error
	})
	return entity, err
}

// Delete removes the entity after authorizing against its chain. Deletion is
// terminal; the chain itself is never reassigned.
func Delete[T domain.ScopedEntity](s *Store, identity authz.Identity, id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var entity T // The chosen target
		if err := tx.First(&entity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrNotFound // Truly absent
			}
			return err
		}
		chain, err := s.Graph.ChainOf(entity)
		if err != nil {
			return err
		}
		decision := s.Engine.Authorize(identity, authz.ActionDelete, entity.Kind(), &chain)
		if !decision.Allowed() {
			return decision.Reason
		}
		if err := ensureActiveForWrite(tx, identity, chain); err != nil {
			return err // Commit-time activity re-check
		}
		return tx.Delete(&entity).Error
	})
}

// ensureActiveForWrite re-checks the owning tenant's activity inside the
// write transaction. Owners lose writes the moment their account is
// suspended, even mid-session; admins keep existing records mutable.
func ensureActiveForWrite(tx *gorm.DB, identity authz.Identity, chain domain.Chain) error {
	if identity.Role == domain.RoleAdmin {
		return nil
	}
	var tenant domain.Tenant // Fresh read inside the transaction
	if err := tx.First(&tenant, chain.TenantID).Error; err != nil {
		return authz.ErrBrokenChain
	}
	if !tenant.IsActive {
		return authz.ErrInactiveTenant
	}
	return nil
}
