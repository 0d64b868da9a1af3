package domain

import "time"

// Notification Model. Property link is optional: a tenant-wide notice carries
// only the tenant id. TargetRole narrows the audience, nil means everyone in
// the chain.
type Notification struct {
	ID            uint      `gorm:"primaryKey"`     // Primary key
	TenantID      uint      `gorm:"not null;index"` // Denormalized owning tenant
	PropertyID    *uint     `gorm:"index"`          // Optional property link
	Title         string    `gorm:"not null"`       // Notice title
	Content       string    `gorm:"not null"`       // Notice body
	Priority      string    `gorm:"default:normal"` // Priority: low, normal, high
	TargetRole    *string   // Audience: owner, renter or nil for all
	AttachmentKey string    // Opaque file-store key, empty when no attachment
	CreatedAt     time.Time // Timestamp of creation
}

// Kind returns the entity kind for authorization
func (Notification) Kind() EntityKind { return KindNotification }

// Chain resolves the ownership chain of the notification
func (n Notification) Chain() Chain {
	return Chain{TenantID: n.TenantID, PropertyID: n.PropertyID}
}
