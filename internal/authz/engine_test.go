package authz

import (
	"testing"

	"rentalhub/internal/domain" // Importing domain models

	"github.com/stretchr/testify/assert"  // Assertion library
	"github.com/stretchr/testify/require" // Assertion library that stops the test
	"gorm.io/driver/sqlite"               // SQLite driver for in-memory test DBs
	"gorm.io/gorm"                        // GORM ORM library
)

// setupEngineDB opens an in-memory store with the full schema
func setupEngineDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Tenant{}, &domain.Property{}, &domain.Unit{}, &domain.User{},
		&domain.Payment{}, &domain.MaintenanceRequest{},
		&domain.Notification{}, &domain.Document{},
	))
	return db
}

func uintP(v uint) *uint { return &v }

func strP(v string) *string { return &v }

func TestAdminUnrestricted(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	admin := Identity{UserID: 1, Role: domain.RoleAdmin}

	for _, kind := range []domain.EntityKind{domain.KindTenant, domain.KindProperty, domain.KindPayment} {
		for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
			decision := engine.Authorize(admin, action, kind, nil)
			assert.True(t, decision.Allowed(), "%s %s", action, kind)
			assert.Nil(t, decision.Scope, "%s %s", action, kind) // Admin queries carry no filter
		}
	}
}

func TestOwnerRequiresTenantBinding(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)

	decision := engine.Authorize(Identity{UserID: 2, Role: domain.RoleOwner}, ActionRead, domain.KindProperty, nil)
	assert.ErrorIs(t, decision.Reason, ErrInsufficientRole)
}

func TestOwnerInactiveTenantDenied(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	tenant := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: false}
	require.NoError(t, db.Create(&tenant).Error)
	owner := Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &tenant.ID}

	// Every owner operation is lost while the account is suspended
	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		decision := engine.Authorize(owner, action, domain.KindProperty, nil)
		assert.ErrorIs(t, decision.Reason, ErrInactiveTenant, "%s", action)
	}
}

func TestOwnerCrossTenantTarget(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	tenant := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)
	owner := Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &tenant.ID}

	// Targeting another tenant's chain is a probing attempt, not a missing role
	other := domain.Chain{TenantID: tenant.ID + 1}
	decision := engine.Authorize(owner, ActionUpdate, domain.KindProperty, &other)
	assert.ErrorIs(t, decision.Reason, ErrCrossTenantAccess)

	// The owner's own chain is fine
	own := domain.Chain{TenantID: tenant.ID}
	assert.True(t, engine.Authorize(owner, ActionUpdate, domain.KindProperty, &own).Allowed())
}

func TestOwnerCannotDeleteAuditRecords(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	tenant := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)
	owner := Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &tenant.ID}
	chain := domain.Chain{TenantID: tenant.ID}

	// Payments and maintenance requests survive owner deletion attempts
	assert.ErrorIs(t, engine.Authorize(owner, ActionDelete, domain.KindPayment, &chain).Reason, ErrInsufficientRole)
	assert.ErrorIs(t, engine.Authorize(owner, ActionDelete, domain.KindMaintenance, &chain).Reason, ErrInsufficientRole)

	// Structural entities can be deleted within the chain
	assert.True(t, engine.Authorize(owner, ActionDelete, domain.KindProperty, &chain).Allowed())
	assert.True(t, engine.Authorize(owner, ActionDelete, domain.KindUnit, &chain).Allowed())
}

func TestOwnerScopeFiltersQueries(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	mine := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	theirs := domain.Tenant{BusinessName: "Bolt Homes", ContactEmail: "bolt@example.com", IsActive: true}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)
	require.NoError(t, db.Create(&domain.Payment{TenantID: mine.ID, PropertyID: 1, UnitID: 1, UserID: 9, Amount: 100, Month: "January", Year: 2025}).Error)
	require.NoError(t, db.Create(&domain.Payment{TenantID: theirs.ID, PropertyID: 2, UnitID: 2, UserID: 8, Amount: 200, Month: "January", Year: 2025}).Error)
	owner := Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &mine.ID}

	decision := engine.Authorize(owner, ActionRead, domain.KindPayment, nil)
	require.True(t, decision.Allowed())
	require.NotNil(t, decision.Scope)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Scopes(decision.Scope).Count(&count).Error)
	assert.Equal(t, int64(1), count) // Only the owner's own payment is visible
}

func TestOwnerPropertyScopeUsesOwnerColumn(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	mine := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	theirs := domain.Tenant{BusinessName: "Bolt Homes", ContactEmail: "bolt@example.com", IsActive: true}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)
	require.NoError(t, db.Create(&domain.Property{Name: "Elm Street", Address: "1 Elm St", TotalUnits: 4, OwnerID: mine.ID}).Error)
	require.NoError(t, db.Create(&domain.Property{Name: "Oak Court", Address: "2 Oak Ct", TotalUnits: 4, OwnerID: theirs.ID}).Error)
	owner := Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &mine.ID}

	decision := engine.Authorize(owner, ActionRead, domain.KindProperty, nil)
	require.True(t, decision.Allowed())

	var properties []domain.Property
	require.NoError(t, db.Model(&domain.Property{}).Scopes(decision.Scope).Find(&properties).Error)
	require.Len(t, properties, 1)
	assert.Equal(t, "Elm Street", properties[0].Name)
}

func TestRenterReadsOwnUnitOnly(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	require.NoError(t, db.Create(&domain.Payment{TenantID: 1, PropertyID: 1, UnitID: 10, UserID: 5, Amount: 100, Month: "January", Year: 2025}).Error)
	require.NoError(t, db.Create(&domain.Payment{TenantID: 1, PropertyID: 1, UnitID: 11, UserID: 6, Amount: 100, Month: "January", Year: 2025}).Error)
	renter := Identity{UserID: 5, Role: domain.RoleRenter, UnitID: uintP(10), PropertyID: uintP(1)}

	decision := engine.Authorize(renter, ActionRead, domain.KindPayment, nil)
	require.True(t, decision.Allowed())

	var payments []domain.Payment
	require.NoError(t, db.Model(&domain.Payment{}).Scopes(decision.Scope).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, uint(10), payments[0].UnitID)
}

func TestRenterCreateTargetsOwnUnit(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	renter := Identity{UserID: 5, Role: domain.RoleRenter, UnitID: uintP(10), PropertyID: uintP(1)}

	own := domain.Chain{TenantID: 1, PropertyID: uintP(1), UnitID: uintP(10)}
	assert.True(t, engine.Authorize(renter, ActionCreate, domain.KindPayment, &own).Allowed())
	assert.True(t, engine.Authorize(renter, ActionCreate, domain.KindMaintenance, &own).Allowed())

	// A deliberately chosen foreign unit is a cross-chain submission
	foreign := domain.Chain{TenantID: 1, PropertyID: uintP(1), UnitID: uintP(11)}
	assert.ErrorIs(t, engine.Authorize(renter, ActionCreate, domain.KindPayment, &foreign).Reason, ErrCrossTenantAccess)
}

func TestRenterNoticeScope(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	// Notices on the renter's property, variously addressed
	require.NoError(t, db.Create(&domain.Notification{TenantID: 1, PropertyID: uintP(1), Title: "All", Content: "x"}).Error)
	require.NoError(t, db.Create(&domain.Notification{TenantID: 1, PropertyID: uintP(1), Title: "Renters", Content: "x", TargetRole: strP(domain.RoleRenter)}).Error)
	require.NoError(t, db.Create(&domain.Notification{TenantID: 1, PropertyID: uintP(1), Title: "Owners", Content: "x", TargetRole: strP(domain.RoleOwner)}).Error)
	// A notice on another property
	require.NoError(t, db.Create(&domain.Notification{TenantID: 1, PropertyID: uintP(2), Title: "Elsewhere", Content: "x"}).Error)
	// Tenant-wide notices carry no property link at all
	require.NoError(t, db.Create(&domain.Notification{TenantID: 1, Title: "Tenant-wide", Content: "x", TargetRole: strP(domain.RoleRenter)}).Error)
	require.NoError(t, db.Create(&domain.Notification{TenantID: 2, Title: "Foreign tenant-wide", Content: "x"}).Error)
	renter := Identity{UserID: 5, Role: domain.RoleRenter, TenantID: uintP(1), UnitID: uintP(10), PropertyID: uintP(1)}

	decision := engine.Authorize(renter, ActionRead, domain.KindNotification, nil)
	require.True(t, decision.Allowed())

	var notices []domain.Notification
	require.NoError(t, db.Model(&domain.Notification{}).Scopes(decision.Scope).Find(&notices).Error)
	titles := make([]string, len(notices))
	for i, n := range notices {
		titles[i] = n.Title
	}
	assert.ElementsMatch(t, []string{"All", "Renters", "Tenant-wide"}, titles)
}

func TestRenterDefaultDeny(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	renter := Identity{UserID: 5, Role: domain.RoleRenter, UnitID: uintP(10), PropertyID: uintP(1)}

	// Structure management, notices and documents stay out of reach
	assert.ErrorIs(t, engine.Authorize(renter, ActionCreate, domain.KindProperty, nil).Reason, ErrInsufficientRole)
	assert.ErrorIs(t, engine.Authorize(renter, ActionDelete, domain.KindUnit, nil).Reason, ErrInsufficientRole)
	assert.ErrorIs(t, engine.Authorize(renter, ActionCreate, domain.KindNotification, nil).Reason, ErrInsufficientRole)
	assert.ErrorIs(t, engine.Authorize(renter, ActionUpdate, domain.KindPayment, nil).Reason, ErrInsufficientRole)
}

func TestUnboundRenterDenied(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	// A renter not yet bound to a unit has no scope to read inside
	renter := Identity{UserID: 5, Role: domain.RoleRenter}
	assert.ErrorIs(t, engine.Authorize(renter, ActionRead, domain.KindPayment, nil).Reason, ErrInsufficientRole)
}

func TestUnknownRoleDenied(t *testing.T) {
	db := setupEngineDB(t)
	engine := NewEngine(db)
	decision := engine.Authorize(Identity{UserID: 5, Role: "auditor"}, ActionRead, domain.KindPayment, nil)
	assert.ErrorIs(t, decision.Reason, ErrInsufficientRole)
}
