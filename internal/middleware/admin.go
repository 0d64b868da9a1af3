package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRole gates a route group on the resolved identity's role. The
// identity was loaded fresh from the store by IdentityMiddleware, so a role
// change takes effect on the next request.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := IdentityFrom(c) // Get resolved identity from context
		// Check if the identity exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check the actor's role
		if identity.Role != role {
			// If the role does not match, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		// Role matches, proceed to the next handler
		c.Next()
	}
}
