package store

import (
	"testing"
	"time"

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models

	"github.com/stretchr/testify/assert"  // Assertion library
	"github.com/stretchr/testify/require" // Assertion library that stops the test
	"gorm.io/driver/sqlite"               // SQLite driver for in-memory test DBs
	"gorm.io/gorm"                        // GORM ORM library
)

// fixture is two fully populated chains plus one identity per role
type fixture struct {
	store *Store

	tenantA domain.Tenant
	tenantB domain.Tenant
	unitA   domain.Unit
	unitB   domain.Unit

	admin   authz.Identity
	ownerA  authz.Identity
	ownerB  authz.Identity
	renterA authz.Identity
}

// setupFixture builds two tenants, each with a property, a unit and a payment
func setupFixture(t *testing.T) fixture {
	t.Helper()
	// A plain ":memory:" DSN gives every pooled connection its own empty
	// database; a named shared-cache DSN keeps the schema visible to the
	// extra connections opened while a transaction pins the first one.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Tenant{}, &domain.Property{}, &domain.Unit{}, &domain.User{},
		&domain.Payment{}, &domain.MaintenanceRequest{},
		&domain.Notification{}, &domain.Document{},
	))

	f := fixture{store: New(db)}

	f.tenantA = domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	f.tenantB = domain.Tenant{BusinessName: "Bolt Homes", ContactEmail: "bolt@example.com", IsActive: true}
	require.NoError(t, db.Create(&f.tenantA).Error)
	require.NoError(t, db.Create(&f.tenantB).Error)

	propertyA := domain.Property{Name: "Elm Street", Address: "1 Elm St", TotalUnits: 4, OwnerID: f.tenantA.ID}
	propertyB := domain.Property{Name: "Oak Court", Address: "2 Oak Ct", TotalUnits: 4, OwnerID: f.tenantB.ID}
	require.NoError(t, db.Create(&propertyA).Error)
	require.NoError(t, db.Create(&propertyB).Error)

	f.unitA = domain.Unit{UnitNumber: "1A", PropertyID: propertyA.ID, TenantID: f.tenantA.ID, RentAmount: 900}
	f.unitB = domain.Unit{UnitNumber: "1B", PropertyID: propertyB.ID, TenantID: f.tenantB.ID, RentAmount: 1100}
	require.NoError(t, db.Create(&f.unitA).Error)
	require.NoError(t, db.Create(&f.unitB).Error)

	// One payment in each chain
	require.NoError(t, db.Create(&domain.Payment{
		TenantID: f.tenantA.ID, PropertyID: propertyA.ID, UnitID: f.unitA.ID, UserID: 10,
		Amount: 900, Month: "January", Year: 2025, PaymentDate: time.Now(), Status: domain.PaymentCompleted,
	}).Error)
	require.NoError(t, db.Create(&domain.Payment{
		TenantID: f.tenantB.ID, PropertyID: propertyB.ID, UnitID: f.unitB.ID, UserID: 11,
		Amount: 1100, Month: "January", Year: 2025, PaymentDate: time.Now(), Status: domain.PaymentCompleted,
	}).Error)

	f.admin = authz.Identity{UserID: 1, Role: domain.RoleAdmin}
	f.ownerA = authz.Identity{UserID: 2, Role: domain.RoleOwner, TenantID: &f.tenantA.ID}
	f.ownerB = authz.Identity{UserID: 3, Role: domain.RoleOwner, TenantID: &f.tenantB.ID}
	f.renterA = authz.Identity{UserID: 10, Role: domain.RoleRenter, TenantID: &f.tenantA.ID, UnitID: &f.unitA.ID, PropertyID: &propertyA.ID}
	return f
}

func TestListVisibilityPerRole(t *testing.T) {
	f := setupFixture(t)

	adminView, err := List[domain.Payment](f.store, f.admin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2) // Admin sees every chain

	ownerView, err := List[domain.Payment](f.store, f.ownerA)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Equal(t, f.tenantA.ID, ownerView[0].TenantID)

	renterView, err := List[domain.Payment](f.store, f.renterA)
	require.NoError(t, err)
	require.Len(t, renterView, 1)
	assert.Equal(t, f.unitA.ID, renterView[0].UnitID)
}

func TestGetHidesForeignChains(t *testing.T) {
	f := setupFixture(t)

	// Owner B's payment exists but owner A cannot tell it apart from absence
	var foreign domain.Payment
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantB.ID).First(&foreign).Error)

	_, err := Get[domain.Payment](f.store, f.ownerA, foreign.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = Get[domain.Payment](f.store, f.ownerA, 99999) // Truly absent
	assert.ErrorIs(t, err, authz.ErrNotFound)

	// The record's own chain reads it fine
	got, err := Get[domain.Payment](f.store, f.ownerB, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, foreign.ID, got.ID)
}

func TestCreateStampsChainAndRoundTrips(t *testing.T) {
	f := setupFixture(t)

	chain := f.unitA.Chain()
	payment := domain.Payment{
		TenantID: chain.TenantID, PropertyID: *chain.PropertyID, UnitID: *chain.UnitID,
		UserID: f.renterA.UserID, Amount: 950, Month: "February", Year: 2025,
		PaymentDate: time.Now(), Status: domain.PaymentCompleted,
	}
	require.NoError(t, Create(f.store, f.renterA, &payment))
	require.NotZero(t, payment.ID)

	got, err := Get[domain.Payment](f.store, f.renterA, payment.ID)
	require.NoError(t, err)
	assert.True(t, got.Chain().Equal(chain)) // The stored chain is the unit's chain
}

func TestCreateRejectsForeignUnit(t *testing.T) {
	f := setupFixture(t)

	// Renter A submits against unit B's chain
	payment := domain.Payment{
		TenantID: f.tenantB.ID, PropertyID: f.unitB.PropertyID, UnitID: f.unitB.ID,
		UserID: f.renterA.UserID, Amount: 950, Month: "February", Year: 2025, PaymentDate: time.Now(),
	}
	assert.ErrorIs(t, Create(f.store, f.renterA, &payment), authz.ErrCrossTenantAccess)
}

func TestDuplicateSubmissionGuard(t *testing.T) {
	f := setupFixture(t)
	chain := f.unitA.Chain()

	pay := func(amount float64) error {
		p := domain.Payment{
			TenantID: chain.TenantID, PropertyID: *chain.PropertyID, UnitID: *chain.UnitID,
			UserID: f.renterA.UserID, Amount: amount, Month: "March", Year: 2025,
			PaymentDate: time.Now(), Status: domain.PaymentCompleted,
		}
		return Create(f.store, f.renterA, &p)
	}

	require.NoError(t, pay(950))                                       // First submission lands
	assert.ErrorIs(t, pay(950), authz.ErrDuplicateSubmission)          // Exact resubmission is rejected
	assert.NoError(t, pay(475), "different amount is a distinct payment") // Not a duplicate

	total, err := Count[domain.Payment](f.store, f.renterA)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total) // Fixture payment plus the two accepted ones
}

func TestInactiveTenantBlocksWrites(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.store.DB.Model(&domain.Tenant{}).Where("id = ?", f.tenantA.ID).Update("is_active", false).Error)

	chain := f.unitA.Chain()
	payment := domain.Payment{
		TenantID: chain.TenantID, PropertyID: *chain.PropertyID, UnitID: *chain.UnitID,
		UserID: f.renterA.UserID, Amount: 950, Month: "February", Year: 2025, PaymentDate: time.Now(),
	}
	// No create lands in a suspended chain, whatever the role
	assert.ErrorIs(t, Create(f.store, f.renterA, &payment), authz.ErrInactiveTenant)
	assert.ErrorIs(t, Create(f.store, f.admin, &payment), authz.ErrInactiveTenant)

	// Reads of the suspended chain still work for the admin
	view, err := List[domain.Payment](f.store, f.admin)
	require.NoError(t, err)
	assert.Len(t, view, 2)

	// The owner loses everything while suspended
	_, err = List[domain.Payment](f.store, f.ownerA)
	assert.ErrorIs(t, err, authz.ErrInactiveTenant)

	// The admin keeps existing records mutable
	var existing domain.Payment
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantA.ID).First(&existing).Error)
	_, err = Update(f.store, f.admin, existing.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentFailed
		return nil
	})
	assert.NoError(t, err)
}

func TestUpdateCannotReparent(t *testing.T) {
	f := setupFixture(t)

	var payment domain.Payment
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantA.ID).First(&payment).Error)

	// Even an admin cannot move a record into another chain
	_, err := Update(f.store, f.admin, payment.ID, func(p *domain.Payment) error {
		p.TenantID = f.tenantB.ID
		p.UnitID = f.unitB.ID
		return nil
	})
	assert.ErrorIs(t, err, authz.ErrCrossTenantAccess)

	// The original row is untouched
	var unchanged domain.Payment
	require.NoError(t, f.store.DB.First(&unchanged, payment.ID).Error)
	assert.Equal(t, f.tenantA.ID, unchanged.TenantID)
}

func TestOwnerUpdateScopedToChain(t *testing.T) {
	f := setupFixture(t)

	var mine, theirs domain.Payment
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantA.ID).First(&mine).Error)
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantB.ID).First(&theirs).Error)

	_, err := Update(f.store, f.ownerA, mine.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentPending
		return nil
	})
	assert.NoError(t, err)

	// A chosen foreign target carries the specific denial, not not-found
	_, err = Update(f.store, f.ownerA, theirs.ID, func(p *domain.Payment) error {
		p.Status = domain.PaymentPending
		return nil
	})
	assert.ErrorIs(t, err, authz.ErrCrossTenantAccess)
}

func TestOwnerCannotDeletePayments(t *testing.T) {
	f := setupFixture(t)

	var payment domain.Payment
	require.NoError(t, f.store.DB.Where("tenant_id = ?", f.tenantA.ID).First(&payment).Error)

	assert.ErrorIs(t, Delete[domain.Payment](f.store, f.ownerA, payment.ID), authz.ErrInsufficientRole)
	assert.NoError(t, Delete[domain.Payment](f.store, f.admin, payment.ID))
}

func TestUnitCapacityEnforced(t *testing.T) {
	f := setupFixture(t)

	property := domain.Property{Name: "Pine Row", Address: "3 Pine Rd", TotalUnits: 1, OwnerID: f.tenantA.ID}
	require.NoError(t, f.store.DB.Create(&property).Error)

	first := domain.Unit{UnitNumber: "1", PropertyID: property.ID, TenantID: f.tenantA.ID, RentAmount: 800}
	require.NoError(t, Create(f.store, f.ownerA, &first))

	second := domain.Unit{UnitNumber: "2", PropertyID: property.ID, TenantID: f.tenantA.ID, RentAmount: 800}
	assert.ErrorIs(t, Create(f.store, f.ownerA, &second), domain.ErrPropertyFull)
}

func TestUnitDeleteVacatesOccupant(t *testing.T) {
	f := setupFixture(t)

	renter := domain.User{Username: "renter_a", Email: "renter@example.com", PasswordHash: "x",
		Role: domain.RoleRenter, UnitID: &f.unitA.ID}
	require.NoError(t, f.store.DB.Create(&renter).Error)

	require.NoError(t, Delete[domain.Unit](f.store, f.ownerA, f.unitA.ID))

	// The occupant survives with the unit link cleared
	var after domain.User
	require.NoError(t, f.store.DB.First(&after, renter.ID).Error)
	assert.Nil(t, after.UnitID)
}

func TestRenterSeesTenantWideNotices(t *testing.T) {
	f := setupFixture(t)
	renterRole := domain.RoleRenter

	// A tenant-wide notice addressed to renters carries no property link
	require.NoError(t, f.store.DB.Create(&domain.Notification{
		TenantID: f.tenantA.ID, Title: "Rent due", Content: "x", TargetRole: &renterRole,
	}).Error)
	// Another tenant's tenant-wide notice must stay invisible
	require.NoError(t, f.store.DB.Create(&domain.Notification{
		TenantID: f.tenantB.ID, Title: "Elsewhere", Content: "x", TargetRole: &renterRole,
	}).Error)

	notices, err := List[domain.Notification](f.store, f.renterA)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "Rent due", notices[0].Title)
}

func TestExtraFiltersOnlyNarrow(t *testing.T) {
	f := setupFixture(t)

	// A caller filter naming the foreign tenant intersects with the scope
	// filter and yields nothing, it cannot widen the view.
	view, err := List[domain.Payment](f.store, f.ownerA, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ?", f.tenantB.ID)
	})
	require.NoError(t, err)
	assert.Empty(t, view)
}
