package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // Assertion library
	"github.com/stretchr/testify/require" // Assertion library that stops the test
	"gorm.io/driver/sqlite"               // SQLite driver for in-memory test DBs
	"gorm.io/gorm"                        // GORM ORM library
)

// setupHandlerStore opens an in-memory store with one tenant, property and unit
func setupHandlerStore(t *testing.T) (*store.Store, domain.Tenant, domain.Unit) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Tenant{}, &domain.Property{}, &domain.Unit{}, &domain.User{},
		&domain.Payment{}, &domain.MaintenanceRequest{},
		&domain.Notification{}, &domain.Document{},
	))
	tenant := domain.Tenant{BusinessName: "Acme Rentals", ContactEmail: "acme@example.com", IsActive: true}
	require.NoError(t, db.Create(&tenant).Error)
	property := domain.Property{Name: "Elm Street", Address: "1 Elm St", TotalUnits: 4, OwnerID: tenant.ID}
	require.NoError(t, db.Create(&property).Error)
	unit := domain.Unit{UnitNumber: "1A", PropertyID: property.ID, TenantID: tenant.ID, RentAmount: 900}
	require.NoError(t, db.Create(&unit).Error)
	return store.New(db), tenant, unit
}

// postJSON invokes a handler with a JSON body and a resolved identity
func postJSON(t *testing.T, handler gin.HandlerFunc, identity authz.Identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("identity", identity)
	handler(c)
	return rec
}

// assignBody builds the unit assignment payload
func assignBody(unitID, userID uint) string {
	return `{"unit_id":` + strconv.Itoa(int(unitID)) + `,"user_id":` + strconv.Itoa(int(userID)) + `}`
}

func TestAssignUnitSingleOccupant(t *testing.T) {
	s, tenant, unit := setupHandlerStore(t)
	owner := authz.Identity{UserID: 1, Role: domain.RoleOwner, TenantID: &tenant.ID}
	first := domain.User{Username: "renterone", Email: "one@example.com", PasswordHash: "x", Role: domain.RoleRenter}
	second := domain.User{Username: "rentertwo", Email: "two@example.com", PasswordHash: "x", Role: domain.RoleRenter}
	require.NoError(t, s.DB.Create(&first).Error)
	require.NoError(t, s.DB.Create(&second).Error)

	rec := postJSON(t, AssignUnitHandler(s), owner, assignBody(unit.ID, first.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The unit already has its occupant, a second binding must be rejected
	rec = postJSON(t, AssignUnitHandler(s), owner, assignBody(unit.ID, second.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var occupants int64
	require.NoError(t, s.DB.Model(&domain.User{}).Where("unit_id = ?", unit.ID).Count(&occupants).Error)
	assert.Equal(t, int64(1), occupants)
}

func TestAssignUnitRejectsSecondUnitForRenter(t *testing.T) {
	s, tenant, unit := setupHandlerStore(t)
	owner := authz.Identity{UserID: 1, Role: domain.RoleOwner, TenantID: &tenant.ID}
	other := domain.Unit{UnitNumber: "1B", PropertyID: unit.PropertyID, TenantID: tenant.ID, RentAmount: 950}
	require.NoError(t, s.DB.Create(&other).Error)
	renter := domain.User{Username: "renterone", Email: "one@example.com", PasswordHash: "x", Role: domain.RoleRenter}
	require.NoError(t, s.DB.Create(&renter).Error)

	rec := postJSON(t, AssignUnitHandler(s), owner, assignBody(unit.ID, renter.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A renter occupies at most one unit
	rec = postJSON(t, AssignUnitHandler(s), owner, assignBody(other.ID, renter.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var after domain.User
	require.NoError(t, s.DB.First(&after, renter.ID).Error)
	require.NotNil(t, after.UnitID)
	assert.Equal(t, unit.ID, *after.UnitID)
}

func TestAssignUnitMarksOccupied(t *testing.T) {
	s, tenant, unit := setupHandlerStore(t)
	owner := authz.Identity{UserID: 1, Role: domain.RoleOwner, TenantID: &tenant.ID}
	renter := domain.User{Username: "renterone", Email: "one@example.com", PasswordHash: "x", Role: domain.RoleRenter}
	require.NoError(t, s.DB.Create(&renter).Error)

	rec := postJSON(t, AssignUnitHandler(s), owner, assignBody(unit.ID, renter.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var after domain.Unit
	require.NoError(t, s.DB.First(&after, unit.ID).Error)
	assert.True(t, after.IsOccupied)
}
