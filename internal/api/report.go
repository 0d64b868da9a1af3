package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository
	"rentalhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// PaymentReportHandler returns the caller's payments with optional filtering
// by unit, month, year, status or date range. The mandatory scope filter is
// applied first; the report filters can only narrow the visible set.
func PaymentReportHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Reports are an owner and admin surface
		if identity.Role == domain.RoleRenter {
			respondError(c, authz.ErrInsufficientRole)
			return
		}
		ctx := context.Background() // Context for Redis operations
		// Build cache key from the scope and all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"unit_id", "month", "year", "status", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// The scope prefix keeps tenants from sharing cache entries
		cacheKey := reportCachePrefix(identity) + ":" + strings.Join(keyParts, ":")
		var cached struct {
			Payments   []domain.Payment `json:"payments"`    // List of payments
			Page       int              `json:"page"`        // Current page
			PageSize   int              `json:"page_size"`   // Page size
			Total      int64            `json:"total"`       // Total number of payments
			TotalPages int              `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"payments":    cached.Payments,   // List of payments
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of payments
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pagination(c) // Read pagination parameters
		filters := []store.Query{}              // Report filters on top of the scope
		if unitID := c.Query("unit_id"); unitID != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("unit_id = ?", unitID) // Filter by unit
			})
		}
		if month := c.Query("month"); month != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("month = ?", month) // Filter by rent month
			})
		}
		if year := c.Query("year"); year != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("year = ?", year) // Filter by rent year
			})
		}
		if status := c.Query("status"); status != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("status = ?", status) // Filter by status
			})
		}
		if from := c.Query("from"); from != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("payment_date >= ?", from) // Filter by start date
			})
		}
		if to := c.Query("to"); to != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("payment_date <= ?", to) // Filter by end date
			})
		}
		// Count the matching payments inside the scope
		total, err := store.Count[domain.Payment](s, identity, filters...)
		if err != nil {
			respondError(c, err)
			return
		}
		// Fetch the matching page, newest first
		pageFilters := append(filters, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("payment_date desc").Offset(offset).Limit(pageSize)
		})
		payments, err := store.List[domain.Payment](s, identity, pageFilters...)
		if err != nil {
			respondError(c, err)
			return
		}
		respData := gin.H{
			"payments":    payments,                    // List of payments
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of payments
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// reportCachePrefix namespaces report cache entries by tenant scope
func reportCachePrefix(identity authz.Identity) string {
	if identity.Role == domain.RoleOwner && identity.TenantID != nil {
		return "reports:tenant:" + strconv.Itoa(int(*identity.TenantID)) // Owner scope
	}
	return "reports:all" // Admin scope
}
