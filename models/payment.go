package models

import (
	"time"
)

// Payment records a completed payment against an order. At most one
// payment may exist per order, its amount must equal the order's
// captured total, and it is immutable after creation.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	Order         Order     `gorm:"foreignKey:OrderID" json:"-"`
	UserID        uint      `gorm:"not null;index" json:"user_id"` // buyer, foreign key to users table
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Method        string    `gorm:"not null" json:"method"`
	TransactionID string    `gorm:"not null;uniqueIndex" json:"transaction_id"` // external gateway reference
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
