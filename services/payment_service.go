package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookhaven/bookhaven-api/models"
	"gorm.io/gorm"
)

var (
	// ErrDuplicatePayment means a payment row already exists for the order.
	ErrDuplicatePayment = errors.New("a payment already exists for this order")

	// ErrDuplicateTransaction means the external transaction ID was already used.
	ErrDuplicateTransaction = errors.New("transaction ID has already been used")

	// ErrOrderNotPayable means the order could not be flipped to paid,
	// typically because it was already paid.
	ErrOrderNotPayable = errors.New("order is not payable")
)

// RecordPayment inserts a payment row and marks its order as paid.
//
// The order update is guarded on payment_status = unpaid so the flip
// can land at most once. If the flip does not land (update error, or
// the order was already paid or deleted underneath us), the freshly
// inserted payment row is deleted again: no payment row may persist
// for an order that did not end up marked paid.
func RecordPayment(db *gorm.DB, payment *models.Payment) error {
	if err := db.Create(payment).Error; err != nil {
		return classifyPaymentError(err)
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", payment.OrderID, models.PaymentStatusUnpaid).
		Update("payment_status", models.PaymentStatusPaid)

	if res.Error != nil || res.RowsAffected == 0 {
		// Compensating delete: undo the insert rather than leave a
		// payment row for an unpaid order.
		if delErr := db.Delete(payment).Error; delErr != nil {
			return fmt.Errorf("failed to roll back payment %d: %w", payment.ID, delErr)
		}
		if res.Error != nil {
			return fmt.Errorf("failed to mark order %d paid: %w", payment.OrderID, res.Error)
		}
		return ErrOrderNotPayable
	}

	return nil
}

// classifyPaymentError maps unique-constraint violations onto the
// payment conflict errors. Works with both PostgreSQL and SQLite
// message formats.
func classifyPaymentError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
		if strings.Contains(msg, "transaction_id") {
			return ErrDuplicateTransaction
		}
		if strings.Contains(msg, "order_id") {
			return ErrDuplicatePayment
		}
	}
	return err
}
