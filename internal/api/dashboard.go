package api

import (
	"net/http" // HTTP status codes

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// OwnerDashboardHandler returns aggregate counts and recent activity for the
// caller's chain. Every number is computed through the scoped repository, so
// an owner only ever counts their own records.
func OwnerDashboardHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Dashboards are an owner and admin surface
		if identity.Role == domain.RoleRenter {
			respondError(c, authz.ErrInsufficientRole)
			return
		}
		// Count properties in scope
		properties, err := store.Count[domain.Property](s, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		// Count units in scope
		units, err := store.Count[domain.Unit](s, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		// Count completed payments in scope
		completedPayments, err := store.Count[domain.Payment](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status = ?", domain.PaymentCompleted)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Count open maintenance requests in scope
		openRequests, err := store.Count[domain.MaintenanceRequest](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status = ?", domain.MaintenanceOpen)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Fetch the five most recent completed payments in scope
		recentPayments, err := store.List[domain.Payment](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status = ?", domain.PaymentCompleted).Order("payment_date desc").Limit(5)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_properties":   properties,        // Properties in scope
			"total_units":        units,             // Units in scope
			"total_payments":     completedPayments, // Completed payments in scope
			"pending_requests":   openRequests,      // Open maintenance requests
			"recent_payments":    recentPayments,    // Latest payments
		})
	}
}

// RenterDashboardHandler returns the renter's recent payments and the
// notices addressed to them
func RenterDashboardHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Dashboards for renters only; owners have their own view
		if identity.Role != domain.RoleRenter {
			respondError(c, authz.ErrInsufficientRole)
			return
		}
		// Fetch the five most recent payments for the renter's unit
		payments, err := store.List[domain.Payment](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("payment_date desc").Limit(5)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Fetch the five most recent notices addressed to the renter
		notifications, err := store.List[domain.Notification](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc").Limit(5)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"payments":      payments,      // Recent payments
			"notifications": notifications, // Recent notices
		})
	}
}
