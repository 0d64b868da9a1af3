package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint   `json:"id"`        // User ID
	Username string `json:"username"`  // Username
	Email    string `json:"email"`     // Email address
	Role     string `json:"role"`      // User role
	TenantID *uint  `json:"tenant_id"` // Owner binding
	UnitID   *uint  `json:"unit_id"`   // Renter binding
}

// ListUsersHandler returns all users with their chain bindings (admin only)
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pagination(c) // Read pagination parameters
		var total int64                         // Total user count
		// Fetch total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Apply offset and limit for pagination
		if err := db.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Email:    u.Email,    // Email address
				Role:     u.Role,     // User role
				TenantID: u.TenantID, // Owner binding
				UnitID:   u.UnitID,   // Renter binding
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,                        // List of users
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of users
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTenantsHandler returns all business accounts (admin only)
func ListTenantsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:tenants:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		var cached struct {
			Tenants    []domain.Tenant `json:"tenants"`     // List of tenants
			Page       int             `json:"page"`        // Current page
			PageSize   int             `json:"page_size"`   // Page size
			Total      int64           `json:"total"`       // Total number of tenants
			TotalPages int             `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"tenants":     cached.Tenants,    // List of tenants
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of tenants
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pagination(c) // Read pagination parameters
		var total int64                         // Total tenant count
		// Fetch total tenant count
		if err := db.Model(&domain.Tenant{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tenants"})
			return
		}
		var tenants []domain.Tenant // Slice to hold tenants
		// Apply offset and limit for pagination
		if err := db.Offset(offset).Limit(pageSize).Find(&tenants).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tenants"})
			return
		}
		respData := gin.H{
			"tenants":     tenants,                     // List of tenants
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of tenants
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// TenantStatusRequest toggles a business account's activity
type TenantStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"` // New activity flag
}

// SetTenantStatusHandler suspends or reactivates a business account (admin
// only). Suspension takes effect on the owner's next request: decisions are
// computed fresh and writes re-check activity at commit time.
func SetTenantStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the tenant id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		var req TenantStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var tenant domain.Tenant // The targeted business account
		if err := db.First(&tenant, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		// Flip the flag atomically
		if err := db.Model(&tenant).Update("is_active", *req.IsActive).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id": tenant.ID,   // Targeted tenant
				"error":     err.Error(), // Error message
			}).Error("Failed to update tenant status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"tenant_id": tenant.ID,     // Targeted tenant
			"is_active": *req.IsActive, // New flag
		}).Info("Tenant status changed")
		// Drop cached admin lists so the change is visible immediately
		ctx := context.Background()
		_ = utils.DeleteCache(ctx, rdb, "admin:tenants:page=1:size=20")
		c.JSON(http.StatusOK, gin.H{"message": "Tenant status updated", "tenant_id": tenant.ID, "is_active": *req.IsActive})
	}
}
