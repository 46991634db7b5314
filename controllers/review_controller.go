package controllers

import (
	"math"
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
)

// UpsertReviewRequest represents the request body for creating or
// updating a review
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty"`
}

// UpsertReview handles POST /api/v1/books/:id/reviews - creates or
// overwrites the requesting user's review of a book.
//
// A review is only accepted when the user holds at least one delivered
// order for the book. Repeat submissions overwrite rating and comment
// rather than appending.
func UpsertReview(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rating must be an integer between 1 and 5",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var book models.Book
	if err := db.First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": "Book not found",
			},
		})
		return
	}

	// Reviews are gated on a delivered order for this (user, book) pair.
	var deliveredOrder models.Order
	err := db.Where("user_id = ? AND book_id = ? AND status = ?",
		user.ID, book.ID, models.OrderStatusDelivered).
		Order("created_at DESC").First(&deliveredOrder).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REVIEW_NOT_ALLOWED",
				"message": "You can only review books from orders that were delivered to you",
			},
		})
		return
	}

	var review models.Review
	err = db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&review).Error
	if err == nil {
		// Overwrite the existing review.
		updates := map[string]interface{}{
			"rating":   req.Rating,
			"comment":  req.Comment,
			"order_id": deliveredOrder.ID,
		}
		if err := db.Model(&review).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update review",
				},
			})
			return
		}

		review.Rating = req.Rating
		review.Comment = req.Comment
		review.OrderID = deliveredOrder.ID
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Review updated",
			"data":    review,
		})
		return
	}

	review = models.Review{
		UserID:  user.ID,
		BookID:  book.ID,
		OrderID: deliveredOrder.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create review",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review created",
		"data":    review,
	})
}

// ListBookReviews handles GET /api/v1/books/:id/reviews - public
// listing of a book's reviews with their average rating.
func ListBookReviews(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var book models.Book
	if err := db.First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOK_NOT_FOUND",
				"message": "Book not found",
			},
		})
		return
	}

	var reviews []models.Review
	if err := db.Preload("User").Where("book_id = ?", book.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list reviews",
			},
		})
		return
	}

	// Arithmetic mean of all ratings, rounded to one decimal place.
	var average float64
	if len(reviews) > 0 {
		sum := 0
		for _, review := range reviews {
			sum += review.Rating
		}
		average = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviews retrieved",
		"data": gin.H{
			"reviews":        reviews,
			"average_rating": average,
		},
		"count": len(reviews),
	})
}
