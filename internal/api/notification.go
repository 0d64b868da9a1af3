package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"rentalhub/internal/authz"   // Authorization types
	"rentalhub/internal/domain"  // Importing domain models
	"rentalhub/internal/storage" // File store collaborator
	"rentalhub/internal/store"   // Scoped repository

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// notificationPriorities is the closed set of priorities
var notificationPriorities = map[string]bool{"low": true, "normal": true, "high": true}

// CreateNotificationHandler posts a notice, optionally with an attachment.
// The form is multipart so a file can ride along: title, content, priority,
// target_role, property_id, file.
func CreateNotificationHandler(s *store.Store, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Only owners and admins post notices
		if identity.Role == domain.RoleRenter {
			respondError(c, authz.ErrInsufficientRole)
			return
		}
		title := c.PostForm("title")     // Notice title
		content := c.PostForm("content") // Notice body
		if title == "" || content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
			return
		}
		priority := c.DefaultPostForm("priority", "normal") // Requested priority
		if !notificationPriorities[priority] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority"})
			return
		}
		var targetRole *string // Audience restriction, nil means everyone
		if role := c.PostForm("target_role"); role == domain.RoleOwner || role == domain.RoleRenter {
			targetRole = &role
		}
		var propertyID *uint // Optional property link
		var tenantID uint    // Owning tenant of the notice
		if raw := c.PostForm("property_id"); raw != "" {
			// The named property must be visible to the caller; a foreign
			// property reads as not found.
			pid, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property_id"})
				return
			}
			property, err := store.Get[domain.Property](s, identity, uint(pid))
			if err != nil {
				respondError(c, err)
				return
			}
			propertyID = &property.ID      // Property link
			tenantID = property.OwnerID    // Chain follows the property
		} else {
			// Tenant-wide notice: owners post under their own tenant
			if identity.TenantID == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
				return
			}
			tenantID = *identity.TenantID
		}
		attachmentKey := "" // Opaque file-store key, empty when no attachment
		// Optional attachment upload
		if header, err := c.FormFile("file"); err == nil && header != nil {
			src, err := header.Open() // Open the uploaded part
			if err != nil {
				respondError(c, err)
				return
			}
			defer src.Close()
			key, err := files.Save(header.Filename, src) // Store the bytes
			if err != nil {
				respondError(c, err)
				return
			}
			attachmentKey = key
			logrus.WithField("file_key", key).Info("Notification attachment stored")
		}
		notification := domain.Notification{
			TenantID:      tenantID,      // Owning tenant
			PropertyID:    propertyID,    // Optional property link
			Title:         title,         // Notice title
			Content:       content,       // Notice body
			Priority:      priority,      // Priority
			TargetRole:    targetRole,    // Audience restriction
			AttachmentKey: attachmentKey, // Stored attachment key
		}
		// Create through the scoped repository
		if err := store.Create(s, identity, &notification); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"notification_id": notification.ID, // New notice id
			"tenant_id":       tenantID,        // Owning tenant
			"user_id":         identity.UserID, // Posting user
			"title":           title,           // Notice title
		}).Info("Notification posted")
		c.JSON(http.StatusCreated, gin.H{"message": "Notification posted successfully", "notification": notification})
	}
}

// ListNotificationsHandler returns the notices visible to the caller.
// Renters see their property's notices addressed to renters or to everyone.
func ListNotificationsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Fetch the visible notices, newest first
		notifications, err := store.List[domain.Notification](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at desc")
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications}) // Return the notices
	}
}
