package controllers

import (
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
)

// AddToWishlistRequest represents the request body for a wishlist insert
type AddToWishlistRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// ListWishlist handles GET /api/v1/wishlist - the requesting user's wishlist
func ListWishlist(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var entries []models.WishlistEntry
	if err := db.Preload("Book").Where("user_id = ?", user.ID).Order("created_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Wishlist retrieved",
		"data":    entries,
		"count":   len(entries),
	})
}

// AddToWishlist handles POST /api/v1/wishlist - adds a book to the
// requesting user's wishlist. Each (user, book) pair may appear once.
func AddToWishlist(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req AddToWishlistRequest
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

	entry := models.WishlistEntry{
		UserID: user.ID,
		BookID: book.ID,
	}

	if err := db.Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_IN_WISHLIST",
					"message": "Book is already in your wishlist",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add book to wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Book added to wishlist",
		"data":    entry,
	})
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/:bookId - removes
// a book from the requesting user's wishlist. Deleting an absent entry
// is rejected with 404, not silently accepted.
func RemoveFromWishlist(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	db := config.GetDB()
	res := db.Where("user_id = ? AND book_id = ?", user.ID, bookID).Delete(&models.WishlistEntry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove book from wishlist",
			},
		})
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_IN_WISHLIST",
				"message": "Book is not in your wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book removed from wishlist",
	})
}
