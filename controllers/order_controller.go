package controllers

import (
	"fmt"
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	BookID  uint   `json:"book_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required,min=10"`
	Address string `json:"address" binding:"required"`
}

// UpdateOrderStatusRequest represents the request body for a status transition
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// invalidTransition writes the InvalidTransition envelope, reporting
// the current state and the allowed set.
func invalidTransition(c *gin.Context, from models.OrderStatus) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_TRANSITION",
			"message": fmt.Sprintf("Cannot leave status %q; allowed transitions: %v", from, from.AllowedTransitions()),
			"details": gin.H{
				"current_status": from,
				"allowed":        from.AllowedTransitions(),
			},
		},
	})
}

// CreateOrder handles POST /api/v1/orders - places an order for a published book
//
// The book's price and owning librarian are captured onto the order at
// this instant; later price changes or book reassignment do not affect it.
func CreateOrder(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	// Required-field and format checks happen before any lookup.
	var req CreateOrderRequest
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
	var book models.Book
	if err := db.First(&book, req.BookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": "Book not found",
			},
		})
		return
	}

	if book.Status != models.BookStatusPublished {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOK_NOT_ORDERABLE",
				"message": "Only published books can be ordered",
			},
		})
		return
	}

	order := models.Order{
		UserID:        user.ID,
		BookID:        book.ID,
		LibrarianID:   book.LibrarianID,
		BookTitle:     book.Title,
		BuyerName:     req.Name,
		BuyerEmail:    req.Email,
		BuyerPhone:    req.Phone,
		BuyerAddress:  req.Address,
		TotalAmount:   book.Price,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed",
		"data":    order,
	})
}

// ListMyOrders handles GET /api/v1/orders/my - the requesting buyer's orders
func ListMyOrders(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.Order
	if err := db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orders retrieved",
		"data":    orders,
		"count":   len(orders),
	})
}

// ListOrders handles GET /api/v1/orders - orders to service
// Librarians see orders for the books they manage; admins see all orders.
func ListOrders(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Model(&models.Order{})
	if !user.IsAdmin() {
		query = query.Where("librarian_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orders retrieved",
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one order
// Visible to the buyer, the servicing librarian and admins.
func GetOrder(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.UserID != user.ID && order.LibrarianID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order retrieved",
		"data":    order,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - moves an
// order along the fulfilment graph (servicing librarian or admin)
func UpdateOrderStatus(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
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

	// The enum is validated before the transition table is consulted.
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Status must be one of: pending, shipped, delivered, cancelled",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.LibrarianID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the servicing librarian or an admin can update this order",
			},
		})
		return
	}

	if !order.Status.CanTransitionTo(req.Status) {
		invalidTransition(c, order.Status)
		return
	}

	if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	order.Status = req.Status
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"data":    order,
	})
}

// CancelOrder handles PATCH /api/v1/orders/:id/cancel - buyer cancels a
// pending order. Orders past pending cannot be cancelled by the buyer.
func CancelOrder(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
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
				"message": "Only the buyer can cancel this order",
			},
		})
		return
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		invalidTransition(c, order.Status)
		return
	}

	if err := db.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to cancel order",
			},
		})
		return
	}

	order.Status = models.OrderStatusCancelled
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
		"data":    order,
	})
}

// MarkOrderPaid handles PATCH /api/v1/orders/:id/pay - buyer marks an
// order as paid without a payment record. paymentStatus moves
// unpaid -> paid exactly once.
func MarkOrderPaid(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
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

	// Guarded on the unpaid state so the flip lands at most once even
	// under concurrent requests.
	res := db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusUnpaid).
		Update("payment_status", models.PaymentStatusPaid)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update payment status",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_PAID",
				"message": "Order has already been paid",
			},
		})
		return
	}

	order.PaymentStatus = models.PaymentStatusPaid
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order marked as paid",
		"data":    order,
	})
}
