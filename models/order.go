package models

import (
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// orderTransitions is the directed graph of allowed status changes.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// AllowedTransitions returns the set of states reachable from s.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	return orderTransitions[s]
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state of an order. It moves
// unpaid -> paid exactly once and is never reversed.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Order represents a book order placed by a user.
//
// Contact fields and the book title are denormalized snapshots captured
// at order time; TotalAmount is the book price at that instant and is
// immune to later price changes. LibrarianID is the book's owning
// librarian at order time, so reassigning a book later does not change
// who services outstanding orders.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"user_id"` // buyer, foreign key to users table
	User          User          `gorm:"foreignKey:UserID" json:"user"`
	BookID        uint          `gorm:"not null;index" json:"book_id"`
	Book          Book          `gorm:"foreignKey:BookID" json:"-"`
	LibrarianID   uint          `gorm:"not null;index" json:"librarian_id"` // owner of the book at order time
	BookTitle     string        `gorm:"not null" json:"book_title"`
	BuyerName     string        `gorm:"not null" json:"buyer_name"`
	BuyerEmail    string        `gorm:"not null" json:"buyer_email"`
	BuyerPhone    string        `gorm:"not null" json:"buyer_phone"`
	BuyerAddress  string        `gorm:"not null" json:"buyer_address"`
	TotalAmount   float64       `gorm:"not null" json:"total_amount"`
	Status        OrderStatus   `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'unpaid'" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
