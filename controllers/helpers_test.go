package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/middleware"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory database with all models migrated and
// injects it as the active handle.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Order{},
		&models.Payment{},
		&models.WishlistEntry{},
		&models.Review{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// newAuthedRouter returns a router whose requests run with the given
// user already resolved, standing in for the token middleware chain.
func newAuthedRouter(user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
	})
	return router
}

// newAnonymousRouter returns a router with no resolved user.
func newAnonymousRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// performRequest serializes body (if any) and routes the request.
func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResponse parses a JSON response body into a generic map.
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v", err)
	}
	return response
}

// errorCode extracts error.code from an error envelope.
func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

// seedUser inserts a user with the given role.
func seedUser(t *testing.T, db *gorm.DB, auth0ID, email string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test " + string(role),
		Email:   email,
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// seedBook inserts a book owned by the given librarian.
func seedBook(t *testing.T, db *gorm.DB, librarianID uint, title string, price float64, status models.BookStatus) models.Book {
	t.Helper()

	book := models.Book{
		Title:       title,
		Author:      "Seed Author",
		Price:       price,
		Category:    "fiction",
		Status:      status,
		LibrarianID: librarianID,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("Failed to seed book: %v", err)
	}
	return book
}

// seedOrder inserts an order snapshotting the given book for the buyer.
func seedOrder(t *testing.T, db *gorm.DB, buyer models.User, book models.Book, status models.OrderStatus) models.Order {
	t.Helper()

	order := models.Order{
		UserID:        buyer.ID,
		BookID:        book.ID,
		LibrarianID:   book.LibrarianID,
		BookTitle:     book.Title,
		BuyerName:     buyer.Name,
		BuyerEmail:    buyer.Email,
		BuyerPhone:    "5551234567",
		BuyerAddress:  "42 Reading Lane",
		TotalAmount:   book.Price,
		Status:        status,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}
