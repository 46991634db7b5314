package controllers

import (
	"net/http"
	"testing"

	"github.com/bookhaven/bookhaven-api/models"
	"github.com/stretchr/testify/assert"
)

func TestCreatePayment(t *testing.T) {
	db := setupTestDB(t)

	librarian := seedUser(t, db, "auth0|pay-lib1", "pay-lib1@example.com", models.RoleLibrarian)
	buyer := seedUser(t, db, "auth0|pay-buyer1", "pay-buyer1@example.com", models.RoleUser)
	stranger := seedUser(t, db, "auth0|pay-buyer2", "pay-buyer2@example.com", models.RoleUser)
	book := seedBook(t, db, librarian.ID, "The Sea of Ink", 12.99, models.BookStatusPublished)
	order := seedOrder(t, db, buyer, book, models.OrderStatusPending)

	t.Run("stranger cannot pay another buyer's order", func(t *testing.T) {
		router := newAuthedRouter(stranger)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id":       order.ID,
			"amount":         12.99,
			"method":         "card",
			"transaction_id": "txn_stranger",
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("mismatched amount is rejected before any write", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id":       order.ID,
			"amount":         12.98,
			"method":         "card",
			"transaction_id": "txn_mismatch",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "AMOUNT_MISMATCH", errorCode(decodeResponse(t, w)))

		var count int64
		db.Model(&models.Payment{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("payment of the exact total marks the order paid", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id":       order.ID,
			"amount":         12.99,
			"method":         "card",
			"transaction_id": "txn_ok",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))

		var updated models.Order
		db.First(&updated, order.ID)
		assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	})

	t.Run("second payment attempt returns ALREADY_PAID", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id":       order.ID,
			"amount":         12.99,
			"method":         "card",
			"transaction_id": "txn_second",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ALREADY_PAID", errorCode(decodeResponse(t, w)))

		var count int64
		db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count)
		assert.Equal(t, int64(1), count, "no second payment row may be created")
	})

	t.Run("missing order returns 404", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id":       uint(99999),
			"amount":         1.00,
			"method":         "card",
			"transaction_id": "txn_missing",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.POST("/payments", CreatePayment)
		w := performRequest(router, "POST", "/payments", map[string]interface{}{
			"order_id": order.ID,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(decodeResponse(t, w)))
	})
}

func TestCreatePaymentDuplicateTransactionID(t *testing.T) {
	db := setupTestDB(t)

	librarian := seedUser(t, db, "auth0|pay-lib2", "pay-lib2@example.com", models.RoleLibrarian)
	buyer := seedUser(t, db, "auth0|pay-buyer3", "pay-buyer3@example.com", models.RoleUser)
	book := seedBook(t, db, librarian.ID, "Twice Told", 10.00, models.BookStatusPublished)
	first := seedOrder(t, db, buyer, book, models.OrderStatusPending)
	second := seedOrder(t, db, buyer, book, models.OrderStatusPending)

	router := newAuthedRouter(buyer)
	router.POST("/payments", CreatePayment)

	w := performRequest(router, "POST", "/payments", map[string]interface{}{
		"order_id":       first.ID,
		"amount":         10.00,
		"method":         "card",
		"transaction_id": "txn_reused",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, "POST", "/payments", map[string]interface{}{
		"order_id":       second.ID,
		"amount":         10.00,
		"method":         "card",
		"transaction_id": "txn_reused",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_TRANSACTION", errorCode(decodeResponse(t, w)))

	// The second order stays unpaid and holds no payment row.
	var updated models.Order
	db.First(&updated, second.ID)
	assert.Equal(t, models.PaymentStatusUnpaid, updated.PaymentStatus)

	var count int64
	db.Model(&models.Payment{}).Where("order_id = ?", second.ID).Count(&count)
	assert.Zero(t, count)
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)

	librarian := seedUser(t, db, "auth0|pay-lib3", "pay-lib3@example.com", models.RoleLibrarian)
	buyer := seedUser(t, db, "auth0|pay-buyer4", "pay-buyer4@example.com", models.RoleUser)
	other := seedUser(t, db, "auth0|pay-buyer5", "pay-buyer5@example.com", models.RoleUser)
	admin := seedUser(t, db, "auth0|pay-admin1", "pay-admin1@example.com", models.RoleAdmin)
	book := seedBook(t, db, librarian.ID, "Ledger Lines", 5.00, models.BookStatusPublished)

	for i, u := range []models.User{buyer, other} {
		order := seedOrder(t, db, u, book, models.OrderStatusPending)
		payment := models.Payment{
			OrderID:       order.ID,
			UserID:        u.ID,
			Amount:        5.00,
			Method:        "card",
			TransactionID: string(rune('a'+i)) + "-txn",
		}
		if err := db.Create(&payment).Error; err != nil {
			t.Fatalf("Failed to seed payment: %v", err)
		}
	}

	t.Run("buyer sees only own payments", func(t *testing.T) {
		router := newAuthedRouter(buyer)
		router.GET("/payments/my", ListMyPayments)
		w := performRequest(router, "GET", "/payments/my", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decodeResponse(t, w)["count"])
	})

	t.Run("admin sees all payments", func(t *testing.T) {
		router := newAuthedRouter(admin)
		router.GET("/payments", ListPayments)
		w := performRequest(router, "GET", "/payments", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decodeResponse(t, w)["count"])
	})
}
