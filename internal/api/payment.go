package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository
	"rentalhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// PaymentRequest represents a rent payment submission
type PaymentRequest struct {
	UnitID        uint    `json:"unit_id"`                        // Target unit, required for owners and admins
	Amount        float64 `json:"amount" binding:"required,gt=0"` // Payment amount
	Month         string  `json:"month" binding:"required"`       // Rent month
	Year          int     `json:"year" binding:"required"`        // Rent year
	PaymentMethod string  `json:"payment_method"`                 // Free-form payment method
}

// CreatePaymentHandler records a rent payment. Renters pay for their own
// unit only; owners and admins may record a payment against any unit they
// can see. The chain is stamped server-side and never taken from the client.
func CreatePaymentHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		var req PaymentRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var chain domain.Chain // Resolved ownership chain of the target unit
		if identity.Role == domain.RoleRenter {
			// Renters always pay for their own unit
			if identity.UnitID == nil {
				respondError(c, authz.ErrInsufficientRole) // Not bound to a unit yet
				return
			}
			resolved, err := s.Graph.ChainOfUnit(*identity.UnitID) // Walk Unit -> Property -> Tenant
			if err != nil {
				respondError(c, err) // Broken chain is an invariant violation
				return
			}
			chain = resolved
		} else {
			// Owners and admins name the unit; an out-of-scope unit id reads
			// as not found.
			if req.UnitID == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unit_id is required"})
				return
			}
			unit, err := store.Get[domain.Unit](s, identity, req.UnitID) // Scoped lookup
			if err != nil {
				respondError(c, err)
				return
			}
			chain = unit.Chain()
		}
		payment := domain.Payment{
			TenantID:      chain.TenantID,          // Denormalized owning tenant
			PropertyID:    *chain.PropertyID,       // Denormalized property link
			UnitID:        *chain.UnitID,           // Target unit
			UserID:        identity.UserID,         // Paying user
			Amount:        req.Amount,              // Payment amount
			Month:         req.Month,               // Rent month
			Year:          req.Year,                // Rent year
			PaymentDate:   time.Now(),              // Timestamp of the payment
			Status:        domain.PaymentCompleted, // Settled on submission
			PaymentMethod: req.PaymentMethod,       // Payment method
		}
		// Create through the scoped repository: authorize, re-check the
		// chain's activity and run the duplicate guard in one transaction.
		if err := store.Create(s, identity, &payment); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": identity.UserID, // Paying user
				"unit_id": payment.UnitID,  // Target unit
				"amount":  req.Amount,      // Payment amount
				"error":   err.Error(),     // Error message
			}).Warn("Payment rejected") // Log payment failure
			respondError(c, err)
			return
		}
		// Log successful payment
		logrus.WithFields(logrus.Fields{
			"payment_id": payment.ID,         // New payment id
			"user_id":    identity.UserID,    // Paying user
			"tenant_id":  payment.TenantID,   // Owning tenant
			"unit_id":    payment.UnitID,     // Target unit
			"amount":     req.Amount,         // Payment amount
			"month":      req.Month,          // Rent month
			"year":       req.Year,           // Rent year
		}).Info("Payment recorded")
		invalidatePaymentCaches(rdb, chain) // Drop stale cached pages for this chain
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Payment successful", "payment": payment})
	}
}

// ListPaymentsHandler returns the payments visible to the caller, paginated
// and cached per scope
func ListPaymentsHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		page, pageSize, offset := pagination(c) // Read pagination parameters
		// Cache key is derived from the scope, not the raw user input
		cacheKey := paymentCachePrefix(identity) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Payments   []domain.Payment `json:"payments"`    // List of payments
			Page       int              `json:"page"`        // Current page
			PageSize   int              `json:"page_size"`   // Page size
			Total      int64            `json:"total"`       // Total payments
			TotalPages int              `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"payments":    cached.Payments,   // Cached payments
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total payments
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Served from cache
			})
			return
		}
		// Count the payments visible to this identity
		total, err := store.Count[domain.Payment](s, identity)
		if err != nil {
			respondError(c, err)
			return
		}
		// Fetch the visible page, newest first
		payments, err := store.List[domain.Payment](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("payment_date desc").Offset(offset).Limit(pageSize)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{
			"payments":    payments,                     // List of payments
			"page":        page,                         // Current page
			"page_size":   pageSize,                     // Page size
			"total":       total,                        // Total payments
			"total_pages": totalPages(total, pageSize),  // Total pages
			"cached":      false,                        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return the payments
	}
}

// GetPaymentHandler returns one payment by id. Payments outside the caller's
// scope read as not found.
func GetPaymentHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the payment id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		payment, err := store.Get[domain.Payment](s, identity, uint(id)) // Scoped lookup
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment}) // Return the payment
	}
}

// paymentCachePrefix derives the cache namespace from the caller's scope so
// identities sharing a scope share cache entries
func paymentCachePrefix(identity authz.Identity) string {
	switch identity.Role {
	case domain.RoleRenter:
		if identity.UnitID != nil {
			return "payments:unit:" + strconv.Itoa(int(*identity.UnitID)) // Renter scope is their unit
		}
	case domain.RoleOwner:
		if identity.TenantID != nil {
			return "payments:tenant:" + strconv.Itoa(int(*identity.TenantID)) // Owner scope is their tenant
		}
	}
	return "payments:all" // Admin scope
}

// invalidatePaymentCaches drops every cached payment page that could contain
// the chain a write just landed in
func invalidatePaymentCaches(rdb *redis.Client, chain domain.Chain) {
	ctx := context.Background() // Context for Redis operations
	if chain.UnitID != nil {
		utils.InvalidatePages(ctx, rdb, "payments:unit:"+strconv.Itoa(int(*chain.UnitID))) // Renter view
	}
	utils.InvalidatePages(ctx, rdb, "payments:tenant:"+strconv.Itoa(int(chain.TenantID))) // Owner view
	utils.InvalidatePages(ctx, rdb, "payments:all")                                       // Admin view
}
