package main

import (
	"context"                       // context package is needed for Redis operations
	"log"                           // log package is needed for logging
	"rentalhub/internal/api"        // Custom package for API handlers
	"rentalhub/internal/authz"      // Identity resolver
	"rentalhub/internal/config"     // Custom package for configuration
	"rentalhub/internal/middleware" // Custom package for middleware
	"rentalhub/internal/storage"    // File store collaborator
	"rentalhub/internal/store"      // Scoped repository

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup the file store for document and notification attachments
	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.MaxUploadMB)
	if err != nil {
		logrus.Fatalf("failed to set up file store: %v", err)
	}

	resolver := authz.NewResolver(db, cfg.JWTSecret) // Identity resolver
	scoped := store.New(db)                          // Scoped repository over the store

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/register", api.RegisterHandler(db))                  // Renter registration endpoint
	r.POST("/register-business", api.RegisterBusinessHandler(db)) // Business registration endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret))         // Login endpoint

	// Authenticated routes: identity is resolved fresh on every request
	auth := r.Group("/")
	auth.Use(middleware.IdentityMiddleware(resolver))

	// Property and unit management
	auth.POST("/properties", api.CreatePropertyHandler(scoped))       // Create property endpoint
	auth.GET("/properties", api.ListPropertiesHandler(scoped))        // List properties endpoint
	auth.GET("/properties/:id", api.GetPropertyHandler(scoped))       // Get property endpoint
	auth.PUT("/properties/:id", api.UpdatePropertyHandler(scoped))    // Update property endpoint
	auth.DELETE("/properties/:id", api.DeletePropertyHandler(scoped)) // Delete property endpoint
	auth.POST("/units", api.CreateUnitHandler(scoped))                // Create unit endpoint
	auth.GET("/units", api.ListUnitsHandler(scoped))                  // List units endpoint
	auth.POST("/units/assign", api.AssignUnitHandler(scoped))         // Bind renter to unit endpoint
	auth.POST("/units/:id/vacate", api.VacateUnitHandler(scoped))     // Vacate unit endpoint

	// Payments
	auth.POST("/payments", api.CreatePaymentHandler(scoped, redisClient)) // Record payment endpoint
	auth.GET("/payments", api.ListPaymentsHandler(scoped, redisClient))   // List payments endpoint
	auth.GET("/payments/:id", api.GetPaymentHandler(scoped))              // Get payment endpoint
	auth.GET("/reports/payments", api.PaymentReportHandler(scoped, redisClient)) // Payment report endpoint

	// Maintenance requests
	auth.POST("/maintenance", api.CreateMaintenanceHandler(scoped))                  // Submit request endpoint
	auth.GET("/maintenance", api.ListMaintenanceHandler(scoped))                     // List requests endpoint
	auth.GET("/maintenance/:id", api.GetMaintenanceHandler(scoped))                  // Get request endpoint
	auth.POST("/maintenance/:id/status", api.UpdateMaintenanceStatusHandler(scoped)) // Update status endpoint

	// Notifications and documents
	auth.POST("/notifications", api.CreateNotificationHandler(scoped, files))  // Post notice endpoint
	auth.GET("/notifications", api.ListNotificationsHandler(scoped))           // List notices endpoint
	auth.POST("/documents", api.UploadDocumentHandler(scoped, files))          // Upload document endpoint
	auth.GET("/documents", api.ListDocumentsHandler(scoped))                   // List documents endpoint
	auth.GET("/documents/:id/download", api.DownloadDocumentHandler(scoped, files)) // Download endpoint

	// Dashboards
	auth.GET("/dashboard/owner", api.OwnerDashboardHandler(scoped))   // Owner dashboard endpoint
	auth.GET("/dashboard/renter", api.RenterDashboardHandler(scoped)) // Renter dashboard endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with the identity middleware and a role gate
	adminGroup.Use(middleware.IdentityMiddleware(resolver), middleware.RequireRole("admin"))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))                 // List users endpoint
	adminGroup.GET("/tenants", api.ListTenantsHandler(db, redisClient))             // List tenants endpoint
	adminGroup.POST("/tenants/:id/status", api.SetTenantStatusHandler(db, redisClient)) // Suspend/reactivate endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
