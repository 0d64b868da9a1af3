package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Resolution timestamps

	"rentalhub/internal/authz"  // Authorization types
	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/store"  // Scoped repository

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// MaintenanceRequestInput submits a maintenance request
type MaintenanceRequestInput struct {
	UnitID      uint   `json:"unit_id"`                        // Target unit, required for owners and admins
	Title       string `json:"title" binding:"required"`       // Short summary
	Description string `json:"description" binding:"required"` // Full description
	Category    string `json:"category" binding:"required"`    // Category of the problem
	Priority    string `json:"priority"`                       // Priority: low, medium, high
}

// MaintenanceStatusInput updates a request's status
type MaintenanceStatusInput struct {
	Status string `json:"status" binding:"required"` // New status
}

// maintenanceCategories is the closed set of accepted categories
var maintenanceCategories = map[string]bool{
	"plumbing": true, "electrical": true, "hvac": true, "appliance": true, "general": true,
}

// maintenanceStatuses is the closed set of request states
var maintenanceStatuses = map[string]bool{
	domain.MaintenanceOpen: true, domain.MaintenanceInProgress: true, domain.MaintenanceCompleted: true,
}

// CreateMaintenanceHandler submits a maintenance request. Renters file
// against their own unit; owners and admins may file against any unit they
// can see. Resubmitting the same title within a day is rejected.
func CreateMaintenanceHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		var req MaintenanceRequestInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !maintenanceCategories[req.Category] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		priority := req.Priority // Requested priority
		if priority == "" {
			priority = "medium" // Default priority
		}
		var chain domain.Chain // Resolved ownership chain of the target unit
		if identity.Role == domain.RoleRenter {
			// Renters always file for their own unit
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
		request := domain.MaintenanceRequest{
			TenantID:    chain.TenantID,          // Denormalized owning tenant
			PropertyID:  *chain.PropertyID,       // Denormalized property link
			UnitID:      *chain.UnitID,           // Target unit
			UserID:      identity.UserID,         // Requesting user
			Title:       req.Title,               // Short summary
			Description: req.Description,         // Full description
			Category:    req.Category,            // Problem category
			Priority:    priority,                // Priority
			Status:      domain.MaintenanceOpen,  // New requests start open
		}
		// Create through the scoped repository: the duplicate guard runs in
		// the same transaction as the insert.
		if err := store.Create(s, identity, &request); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"request_id": request.ID,      // New request id
			"user_id":    identity.UserID, // Requesting user
			"unit_id":    request.UnitID,  // Target unit
			"title":      request.Title,   // Summary
		}).Info("Maintenance request submitted")
		c.JSON(http.StatusCreated, gin.H{"message": "Maintenance request submitted successfully", "request": request})
	}
}

// ListMaintenanceHandler returns the requests visible to the caller
func ListMaintenanceHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		filters := []store.Query{func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc") // Newest first
		}}
		// Optional status filter; it can only shrink the scoped set
		if status := c.Query("status"); status != "" {
			filters = append(filters, func(tx *gorm.DB) *gorm.DB {
				return tx.Where("status = ?", status)
			})
		}
		requests, err := store.List[domain.MaintenanceRequest](s, identity, filters...) // Scoped list
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests}) // Return the requests
	}
}

// GetMaintenanceHandler returns one request by id
func GetMaintenanceHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the request id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		request, err := store.Get[domain.MaintenanceRequest](s, identity, uint(id)) // Scoped lookup
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"request": request}) // Return the request
	}
}

// UpdateMaintenanceStatusHandler moves a request through its lifecycle.
// Completing a request stamps the resolution time.
func UpdateMaintenanceStatusHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the request id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		var req MaintenanceStatusInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !maintenanceStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status provided"})
			return
		}
		// Apply the transition through the scoped repository
		request, err := store.Update(s, identity, uint(id), func(m *domain.MaintenanceRequest) error {
			m.Status = req.Status // New status
			if req.Status == domain.MaintenanceCompleted && m.ResolvedAt == nil {
				now := time.Now() // Resolution timestamp
				m.ResolvedAt = &now
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"request_id": request.ID,      // Updated request
			"status":     request.Status,  // New status
			"user_id":    identity.UserID, // Acting user
		}).Info("Maintenance request updated")
		c.JSON(http.StatusOK, gin.H{"message": "Maintenance request updated successfully", "request": request})
	}
}
