package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"rentalhub/internal/authz" // Identity resolver

	"github.com/gin-gonic/gin" // Gin web framework
)

// identityKey is the gin context key carrying the resolved identity
const identityKey = "identity"

// IdentityMiddleware validates the bearer token and resolves the actor's
// identity fresh from the store on every request
func IdentityMiddleware(resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		identity, err := resolver.Resolve(tokenStr)           // Resolve the actor's identity
		if err != nil {
			// Token invalid, expired or referring to a deleted user
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(identityKey, identity) // Store identity in context
		c.Next()                     // Proceed to the next handler
	}
}

// IdentityFrom extracts the resolved identity from the gin context
func IdentityFrom(c *gin.Context) (authz.Identity, bool) {
	value, exists := c.Get(identityKey) // Get identity from context
	if !exists {
		return authz.Identity{}, false // Request never passed the middleware
	}
	identity, ok := value.(authz.Identity) // Type assert the identity
	return identity, ok
}
