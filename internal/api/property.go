package api

import (
	"errors"   // Sentinel errors
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// errUnitOccupied rejects binding a second renter to an occupied unit
var errUnitOccupied = errors.New("unit already occupied")

// PropertyRequest creates or updates a property
type PropertyRequest struct {
	Name       string `json:"name" binding:"required"`           // Property display name
	Address    string `json:"address" binding:"required"`        // Street address
	TotalUnits int    `json:"total_units" binding:"required,gt=0"` // Declared unit capacity
	TenantID   uint   `json:"tenant_id"`                         // Admin only: the owning tenant
}

// UnitRequest creates a unit under a property
type UnitRequest struct {
	PropertyID uint    `json:"property_id" binding:"required"` // Parent property
	UnitNumber string  `json:"unit_number" binding:"required"` // Unique within the property
	RentAmount float64 `json:"rent_amount" binding:"gte=0"`    // Monthly rent, non-negative
}

// AssignUnitRequest binds an approved renter to a unit
type AssignUnitRequest struct {
	UnitID uint `json:"unit_id" binding:"required"` // Unit to occupy
	UserID uint `json:"user_id" binding:"required"` // Approved renter
}

// CreatePropertyHandler adds a property under the caller's tenant. Admins
// name the tenant explicitly; the owner link is immutable afterwards.
func CreatePropertyHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		var req PropertyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ownerID := uint(0) // The owning tenant of the new property
		switch identity.Role {
		case domain.RoleOwner:
			if identity.TenantID == nil {
				respondError(c, authz.ErrInsufficientRole) // Owner without a tenant binding
				return
			}
			ownerID = *identity.TenantID // Owners create under their own tenant
		case domain.RoleAdmin:
			if req.TenantID == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
				return
			}
			ownerID = req.TenantID // Admins may create for any tenant
		default:
			respondError(c, authz.ErrInsufficientRole) // Renters cannot manage properties
			return
		}
		property := domain.Property{
			Name:       req.Name,       // Property display name
			Address:    req.Address,    // Street address
			TotalUnits: req.TotalUnits, // Declared capacity
			OwnerID:    ownerID,        // Immutable owner link
		}
		// Create through the scoped repository
		if err := store.Create(s, identity, &property); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"property_id": property.ID,      // New property id
			"tenant_id":   property.OwnerID, // Owning tenant
			"name":        property.Name,    // Display name
		}).Info("Property created")
		c.JSON(http.StatusCreated, gin.H{"message": "Property added successfully", "property": property})
	}
}

// ListPropertiesHandler returns the properties visible to the caller
func ListPropertiesHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Fetch the visible properties, newest first
		properties, err := store.List[domain.Property](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc")
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"properties": properties}) // Return the properties
	}
}

// GetPropertyHandler returns one property by id
func GetPropertyHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the property id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		property, err := store.Get[domain.Property](s, identity, uint(id)) // Scoped lookup
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"property": property}) // Return the property
	}
}

// UpdatePropertyHandler changes a property's descriptive fields. The owner
// link never changes: properties are not re-parented.
func UpdatePropertyHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the property id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		var req PropertyRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply the mutation through the scoped repository; the chain guard
		// rejects any attempt to move the property to another tenant.
		property, err := store.Update(s, identity, uint(id), func(p *domain.Property) error {
			p.Name = req.Name             // Display name
			p.Address = req.Address       // Street address
			p.TotalUnits = req.TotalUnits // Declared capacity
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Property updated", "property": property})
	}
}

// DeletePropertyHandler removes a property and its units
func DeletePropertyHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the property id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		// Delete through the scoped repository
		if err := store.Delete[domain.Property](s, identity, uint(id)); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"property_id": id,              // Deleted property
			"user_id":     identity.UserID, // Acting user
		}).Info("Property deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
	}
}

// CreateUnitHandler adds a unit under a property the caller owns. The
// capacity and unit-number invariants are enforced inside the transaction.
func CreateUnitHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		var req UnitRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.RentAmount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve the parent property through the scoped repository: a
		// property in another chain reads as not found.
		property, err := store.Get[domain.Property](s, identity, req.PropertyID)
		if err != nil {
			respondError(c, err)
			return
		}
		unit := domain.Unit{
			UnitNumber: req.UnitNumber,   // Unique within the property
			PropertyID: property.ID,      // Parent property
			TenantID:   property.OwnerID, // Denormalized owning tenant
			RentAmount: req.RentAmount,   // Monthly rent
		}
		// Create through the scoped repository
		if err := store.Create(s, identity, &unit); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"unit_id":     unit.ID,         // New unit id
			"property_id": property.ID,     // Parent property
			"unit_number": unit.UnitNumber, // Unit number
		}).Info("Unit created")
		c.JSON(http.StatusCreated, gin.H{"message": "Unit added successfully", "unit": unit})
	}
}

// ListUnitsHandler returns the units visible to the caller, optionally
// narrowed to one property
func ListUnitsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		filters := []store.Query{} // Extra narrowing filters
		// Optional property filter; it can only shrink the scoped set
		if propertyID := c.Query("property_id"); propertyID != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("property_id = ?", propertyID)
			})
		}
		units, err := store.List[domain.Unit](s, identity, filters...) // Scoped list
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"units": units}) // Return the units
	}
}

// AssignUnitHandler binds an approved renter to a unit. A renter occupies at
// most one unit, and the unit must sit inside the caller's chain.
func AssignUnitHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		var req AssignUnitRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The unit must be visible to the caller; a foreign unit reads as
		// not found.
		unit, err := store.Get[domain.Unit](s, identity, req.UnitID)
		if err != nil {
			respondError(c, err)
			return
		}
		// Occupancy change is a single atomic transaction
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			// A unit holds at most one occupant; the count runs inside the
			// transaction so concurrent assignments serialize on it.
			var occupants int64
			if err := tx.Model(&domain.User{}).Where("unit_id = ?", unit.ID).Count(&occupants).Error; err != nil {
				return err
			}
			if occupants > 0 {
				return errUnitOccupied
			}
			var user domain.User // The approved renter
			if err := tx.First(&user, req.UserID).Error; err != nil {
				return authz.ErrNotFound // No such user
			}
			if user.Role != domain.RoleRenter {
				return authz.ErrInsufficientRole // Only renters occupy units
			}
			if user.UnitID != nil {
				return gorm.ErrInvalidData // Already occupying a unit
			}
			// Bind the renter and mark the unit occupied
			if err := tx.Model(&user).Update("unit_id", unit.ID).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Unit{}).Where("id = ?", unit.ID).Update("is_occupied", true).Error
		})
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrInvalidData):
				c.JSON(http.StatusBadRequest, gin.H{"error": "User already occupies a unit"})
			case errors.Is(err, errUnitOccupied):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unit is already occupied"})
			default:
				respondError(c, err)
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"unit_id": unit.ID,    // Occupied unit
			"user_id": req.UserID, // Bound renter
		}).Info("Unit assigned")
		c.JSON(http.StatusOK, gin.H{"message": "Unit assigned"})
	}
}

// VacateUnitHandler clears a unit's occupant. The occupant link is weak:
// the renter's account is untouched beyond losing the unit binding.
func VacateUnitHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the unit id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		// The unit must be visible to the caller
		unit, err := store.Get[domain.Unit](s, identity, uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		// Clear occupant and occupancy flag atomically
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.User{}).Where("unit_id = ?", unit.ID).Update("unit_id", nil).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Unit{}).Where("id = ?", unit.ID).Update("is_occupied", false).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Unit vacated"})
	}
}
