package domain

import "time"

// Document Model. The file bytes live in the file store, the row only keeps
// an opaque key the core never interprets.
type Document struct {
	ID         uint      `gorm:"primaryKey"`     // Primary key
	TenantID   uint      `gorm:"not null;index"` // Denormalized owning tenant
	PropertyID *uint     `gorm:"index"`          // Optional property link
	Title      string    `gorm:"not null"`       // Document title
	Filename   string    `gorm:"not null"`       // Original filename shown on download
	FileKey    string    `gorm:"not null"`       // Opaque file-store key
	FileType   string    // Declared content type
	UploadedBy uint      `gorm:"not null"`       // Uploading user
	TargetRole *string   // Audience: owner, renter or nil for all
	UploadedAt time.Time `gorm:"autoCreateTime"` // Timestamp of upload
}

// Kind returns the entity kind for authorization
func (Document) Kind() EntityKind { return KindDocument }

// Chain resolves the ownership chain of the document
func (d Document) Chain() Chain {
	return Chain{TenantID: d.TenantID, PropertyID: d.PropertyID}
}
