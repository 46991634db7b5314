package controllers

import (
	"errors"
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/bookhaven/bookhaven-api/services"
	"github.com/bookhaven/bookhaven-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadBookCover handles POST /api/v1/books/:id/cover - uploads a PNG
// cover image for a book (owning librarian or admin)
func UploadBookCover(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

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

	if book.LibrarianID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the owning librarian or an admin can upload a cover for this book",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "An image file is required",
			},
		})
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Image storage is not configured",
			},
		})
		return
	}

	imageKey, err := imageService.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload cover image",
			},
		})
		return
	}

	oldKey := book.CoverS3Key
	if err := db.Model(&book).Update("cover_s3_key", imageKey).Error; err != nil {
		// Keep storage consistent with the database row.
		_ = imageService.DeleteImage(imageKey)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save cover reference",
			},
		})
		return
	}

	// Best-effort cleanup of the replaced cover.
	if oldKey != nil && *oldKey != "" {
		_ = imageService.DeleteImage(*oldKey)
	}

	book.CoverS3Key = &imageKey
	attachCoverURL(&book)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cover image uploaded",
		"data":    book,
	})
}
