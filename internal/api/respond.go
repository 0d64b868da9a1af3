package api

import (
	"errors"
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"rentalhub/internal/authz"      // Denial taxonomy
	"rentalhub/internal/domain"     // Importing domain models
	"rentalhub/internal/middleware" // Identity extraction
	"rentalhub/internal/storage"    // File store failures

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps a core error onto an HTTP response. CrossTenantAccess
// and NotFound produce byte-identical responses: a capable actor probing a
// foreign chain must not learn whether the id exists.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, authz.ErrInactiveTenant):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended. Contact support to reactivate."})
	case errors.Is(err, authz.ErrInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, authz.ErrCrossTenantAccess):
		// Possible probing attempt: log the real reason as a security event,
		// answer as if the entity does not exist.
		identity, _ := middleware.IdentityFrom(c)
		logrus.WithFields(logrus.Fields{
			"security_event": "cross_tenant_access", // Distinct from plain role denials
			"user_id":        identity.UserID,       // Acting user
			"role":           identity.Role,         // Acting role
			"path":           c.FullPath(),          // Requested route
		}).Warn("Cross-tenant access attempt")
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, authz.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, authz.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, gin.H{"error": "An identical submission already exists"})
	case errors.Is(err, domain.ErrPropertyFull):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property is already at its declared unit capacity"})
	case errors.Is(err, storage.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
	case errors.Is(err, storage.ErrFileType), errors.Is(err, storage.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
	default:
		// Internal causes (broken chains, storage failures) are logged but
		// never leaked to the caller.
		logrus.WithError(err).Error("Operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

// identityFrom pulls the resolved identity or answers 401 itself
func identityFrom(c *gin.Context) (authz.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c) // Get resolved identity from context
	if !ok {
		// Route was wired without the identity middleware
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return authz.Identity{}, false
	}
	return identity, true
}

// pagination reads page/page_size query parameters with the usual bounds
func pagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	// If page exists in query
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// If page_size exists in query
	if ps := c.Query("page_size"); ps != "" {
		// Convert page_size to integer
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	offset = (page - 1) * pageSize // Calculate offset
	return page, pageSize, offset
}

// totalPages computes the page count for a paginated response
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}
