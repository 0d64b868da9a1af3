package db

import (
	"rentalhub/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Password hashing

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.Tenant{},             // Business owner accounts
		&domain.Property{},           // Rental properties
		&domain.Unit{},               // Rental units
		&domain.User{},               // Actors
		&domain.Payment{},            // Rent payments
		&domain.MaintenanceRequest{}, // Maintenance requests
		&domain.Notification{},       // Notices
		&domain.Document{},           // Uploaded documents
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	// Seed the default platform administrator when none exists
	if err := SeedAdmin(db, "admin", "admin@rentalhub.local", "admin123"); err != nil {
		logrus.Fatalf("admin seeding failed: %v", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
}

// SeedAdmin creates a default admin user unless one already exists
func SeedAdmin(db *gorm.DB, username, email, password string) error {
	var count int64 // Existing admin count
	if err := db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // An admin already exists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := domain.User{
		Username:     username,         // Default admin username
		Email:        email,            // Default admin email
		PasswordHash: string(hash),     // Hashed default password
		Role:         domain.RoleAdmin, // Platform administrator
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("username", username).Warn("Default admin created, change the password")
	return nil
}
