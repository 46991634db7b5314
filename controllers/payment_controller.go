package controllers

import (
	"errors"
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/bookhaven/bookhaven-api/services"
	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	OrderID       uint    `json:"order_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transaction_id" binding:"required"`
}

// CreatePayment handles POST /api/v1/payments - records a payment
// against the buyer's own order and marks the order paid.
//
// All checks resolve before the write sequence begins; once the payment
// row is inserted, a failed order update triggers a compensating delete
// inside services.RecordPayment.
func CreatePayment(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the buyer can pay for this order",
			},
		})
		return
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_PAID",
				"message": "Order has already been paid",
			},
		})
		return
	}

	// The amount must match the captured total exactly; no tolerance band.
	if req.Amount != order.TotalAmount {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AMOUNT_MISMATCH",
				"message": "Payment amount must equal the order total",
			},
		})
		return
	}

	payment := models.Payment{
		OrderID:       order.ID,
		UserID:        user.ID,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	}

	if err := services.RecordPayment(db, &payment); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicatePayment):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_PAYMENT",
					"message": "A payment already exists for this order",
				},
			})
		case errors.Is(err, services.ErrDuplicateTransaction):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_TRANSACTION",
					"message": "This transaction ID has already been used",
				},
			})
		case errors.Is(err, services.ErrOrderNotPayable):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_PAID",
					"message": "Order has already been paid",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to record payment",
				},
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment recorded",
		"data":    payment,
	})
}

// ListMyPayments handles GET /api/v1/payments/my - the requesting buyer's payments
func ListMyPayments(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var payments []models.Payment
	if err := db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list payments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payments retrieved",
		"data":    payments,
		"count":   len(payments),
	})
}

// ListPayments handles GET /api/v1/payments - all payments (admins only)
func ListPayments(c *gin.Context) {
	db := config.GetDB()
	var payments []models.Payment
	if err := db.Preload("Order").Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list payments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payments retrieved",
		"data":    payments,
		"count":   len(payments),
	})
}
