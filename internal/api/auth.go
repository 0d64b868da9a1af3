package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"rentalhub/internal/domain" // Importing domain models
	"rentalhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is a renter self-registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Phone    string `json:"phone"`                       // Optional contact phone
}

// RegisterBusinessRequest registers a business account plus its owner login
type RegisterBusinessRequest struct {
	BusinessName     string `json:"business_name" binding:"required"` // Business display name
	ContactEmail     string `json:"contact_email" binding:"required"` // Globally unique contact email
	ContactPhone     string `json:"contact_phone"`                    // Business phone
	BusinessAddress  string `json:"business_address"`                 // Business address
	SubscriptionPlan string `json:"subscription_plan"`                // Plan: basic, pro, enterprise
	Username         string `json:"username" binding:"required"`      // Owner login username
	Email            string `json:"email" binding:"required"`         // Owner login email
	Password         string `json:"password" binding:"required"`      // Owner login password
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidUsername checks if the username contains only alphanumeric characters
func isValidUsername(username string) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z][A-Za-z0-9]{3,19}$`, username) // Letters first, 4-20 characters
	return matched                                                           // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // Return true if length is valid
}

// isValidEmail performs a shape check on the email address
func isValidEmail(email string) bool {
	matched, _ := regexp.MatchString(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, email) // Basic shape check only
	return matched
}

// subscriptionPlans is the closed set of offered plans
var subscriptionPlans = map[string]bool{"basic": true, "pro": true, "enterprise": true}

// RegisterHandler creates a renter account. The unit binding happens later,
// when an owner approves the renter's application.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate username, email and password
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 4-20 alphanumeric characters starting with a letter"})
			return
		}
		if !isValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase username to ensure uniqueness
		user := domain.User{
			Username:     strings.ToLower(req.Username),     // Lowercased unique username
			Email:        strings.ToLower(req.Email),        // Lowercased unique email
			PasswordHash: string(hash),                      // Hashed password
			Phone:        req.Phone,                         // Optional phone
			Role:         domain.RoleRenter,                 // Self-registration is always a renter
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// If creation fails (e.g., duplicate username or email), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		logrus.WithField("username", user.Username).Info("Renter registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// RegisterBusinessHandler creates a business account (Tenant) together with
// its owner login in one atomic transaction.
func RegisterBusinessHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterBusinessRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the owner login and contact email
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 4-20 alphanumeric characters starting with a letter"})
			return
		}
		if !isValidEmail(req.ContactEmail) || !isValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		plan := req.SubscriptionPlan // Requested plan
		if plan == "" {
			plan = "basic" // Default plan
		}
		if !subscriptionPlans[plan] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown subscription plan"})
			return
		}
		// Hash the owner password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		var tenant domain.Tenant // The created business account
		// The business account and its owner login are created together or
		// not at all.
		err = db.Transaction(func(tx *gorm.DB) error {
			tenant = domain.Tenant{
				BusinessName:     req.BusinessName,                  // Business display name
				ContactEmail:     strings.ToLower(req.ContactEmail), // Unique contact email
				ContactPhone:     req.ContactPhone,                  // Business phone
				BusinessAddress:  req.BusinessAddress,               // Business address
				SubscriptionPlan: plan,                              // Chosen plan
				IsActive:         true,                              // New accounts start active
			}
			// Create the business account
			if err := tx.Create(&tenant).Error; err != nil {
				return err // Duplicate contact email rolls everything back
			}
			owner := domain.User{
				Username:     strings.ToLower(req.Username), // Owner login username
				Email:        strings.ToLower(req.Email),    // Owner login email
				PasswordHash: string(hash),                  // Hashed password
				Role:         domain.RoleOwner,              // Owner role
				TenantID:     &tenant.ID,                    // Bound to the new business account
			}
			// Create the owner login
			return tx.Create(&owner).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"business_name": req.BusinessName, // Requested business name
				"error":         err.Error(),      // Error message
			}).Error("Business registration failed") // Log registration failure
			c.JSON(http.StatusBadRequest, gin.H{"error": "Business email, username or email already registered"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"tenant_id":     tenant.ID,           // New business account id
			"business_name": tenant.BusinessName, // Business display name
		}).Info("Business registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Business registered successfully", "tenant_id": tenant.ID})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", strings.ToLower(req.Username)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			logrus.WithField("username", req.Username).Warn("Failed login attempt")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
