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

// UploadDocumentHandler stores a document for the caller's chain. Multipart
// form: title, target_role, property_id, file.
func UploadDocumentHandler(s *store.Store, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Only owners and admins share documents
		if identity.Role == domain.RoleRenter {
			respondError(c, authz.ErrInsufficientRole)
			return
		}
		title := c.PostForm("title") // Document title
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		var targetRole *string // Audience restriction, nil means everyone
		if role := c.PostForm("target_role"); role == domain.RoleOwner || role == domain.RoleRenter {
			targetRole = &role
		}
		var propertyID *uint // Optional property link
		var tenantID uint    // Owning tenant of the document
		if raw := c.PostForm("property_id"); raw != "" {
			pid, err := strconv.ParseUint(raw, 10, 64) // Parse the property id
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property_id"})
				return
			}
			// A foreign property reads as not found
			property, err := store.Get[domain.Property](s, identity, uint(pid))
			if err != nil {
				respondError(c, err)
				return
			}
			propertyID = &property.ID   // Property link
			tenantID = property.OwnerID // Chain follows the property
		} else {
			if identity.TenantID == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
				return
			}
			tenantID = *identity.TenantID // Tenant-wide document
		}
		header, err := c.FormFile("file") // The uploaded file
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a file to upload"})
			return
		}
		src, err := header.Open() // Open the uploaded part
		if err != nil {
			respondError(c, err)
			return
		}
		defer src.Close()
		key, err := files.Save(header.Filename, src) // Store the bytes, get the opaque key
		if err != nil {
			respondError(c, err)
			return
		}
		document := domain.Document{
			TenantID:   tenantID,                            // Owning tenant
			PropertyID: propertyID,                          // Optional property link
			Title:      title,                               // Document title
			Filename:   header.Filename,                     // Original filename for download
			FileKey:    key,                                 // Opaque file-store key
			FileType:   header.Header.Get("Content-Type"),   // Declared content type
			UploadedBy: identity.UserID,                     // Uploading user
			TargetRole: targetRole,                          // Audience restriction
		}
		// Create through the scoped repository
		if err := store.Create(s, identity, &document); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"document_id": document.ID,     // New document id
			"tenant_id":   tenantID,        // Owning tenant
			"user_id":     identity.UserID, // Uploading user
			"file_key":    key,             // Stored key
		}).Info("Document uploaded")
		c.JSON(http.StatusCreated, gin.H{"message": "Document uploaded successfully", "document": document})
	}
}

// ListDocumentsHandler returns the documents visible to the caller
func ListDocumentsHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		// Fetch the visible documents, newest first
		documents, err := store.List[domain.Document](s, identity, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("uploaded_at desc")
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": documents}) // Return the documents
	}
}

// DownloadDocumentHandler streams a document's bytes. Scope is enforced by
// the repository lookup: a foreign document reads as not found before the
// file store is ever consulted.
func DownloadDocumentHandler(s *store.Store, files storage.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c) // Get resolved identity from context
		if !ok {
			return // Response already written
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse the document id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		document, err := store.Get[domain.Document](s, identity, uint(id)) // Scoped lookup
		if err != nil {
			respondError(c, err)
			return
		}
		path, err := files.Path(document.FileKey) // Resolve the opaque key
		if err != nil {
			respondError(c, authz.ErrNotFound) // Row exists but bytes are gone
			return
		}
		logrus.WithFields(logrus.Fields{
			"document_id": document.ID,     // Downloaded document
			"user_id":     identity.UserID, // Downloading user
		}).Info("Document downloaded")
		c.FileAttachment(path, document.Filename) // Stream with the original filename
	}
}
