package domain

import (
	"time"

	"gorm.io/gorm" // GORM ORM library
)

// Payment statuses
const (
	PaymentPending   = "pending"   // Recorded but not settled
	PaymentCompleted = "completed" // Settled payment
	PaymentFailed    = "failed"    // Settlement failed
)

// Payment Model. The tenant/property/unit columns are denormalized so scope
// filtering is a single indexed comparison instead of a join per request.
type Payment struct {
	ID            uint      `gorm:"primaryKey"`        // Primary key
	TenantID      uint      `gorm:"not null;index"`    // Denormalized owning tenant
	PropertyID    uint      `gorm:"not null;index"`    // Denormalized property link
	UnitID        uint      `gorm:"not null;index"`    // Unit the payment is for
	UserID        uint      `gorm:"not null"`          // Paying user
	Amount        float64   `gorm:"not null"`          // Payment amount
	Month         string    `gorm:"not null"`          // Rent month, e.g. "January"
	Year          int       `gorm:"not null"`          // Rent year
	PaymentDate   time.Time // Timestamp of the payment
	Status        string    `gorm:"default:pending"`   // Status: pending, completed, failed
	PaymentMethod string    // Free-form payment method
}

// Kind returns the entity kind for authorization
func (Payment) Kind() EntityKind { return KindPayment }

// Chain resolves the ownership chain of the payment
func (p Payment) Chain() Chain {
	propertyID := p.PropertyID // Copy for the pointer
	unitID := p.UnitID         // Copy for the pointer
	return Chain{TenantID: p.TenantID, PropertyID: &propertyID, UnitID: &unitID}
}

// DuplicateWhere matches an exact resubmission: same unit, same amount, same
// day. A second identical create within the scope is rejected, a different
// amount on the same day is not.
func (p Payment) DuplicateWhere(tx *gorm.DB) *gorm.DB {
	dayStart := time.Date(p.PaymentDate.Year(), p.PaymentDate.Month(), p.PaymentDate.Day(), 0, 0, 0, 0, p.PaymentDate.Location())
	return tx.Where("unit_id = ? AND amount = ? AND payment_date >= ? AND payment_date < ?",
		p.UnitID, p.Amount, dayStart, dayStart.AddDate(0, 0, 1))
}
