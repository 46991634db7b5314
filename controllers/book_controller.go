package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/middleware"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/bookhaven/bookhaven-api/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateBookRequest represents the request body for creating a book
type CreateBookRequest struct {
	Title       string            `json:"title" binding:"required"`
	Author      string            `json:"author" binding:"required"`
	Price       float64           `json:"price" binding:"required,gt=0"`
	Category    string            `json:"category" binding:"omitempty"`
	Description string            `json:"description" binding:"omitempty"`
	Status      models.BookStatus `json:"status" binding:"omitempty"`
	LibrarianID uint              `json:"librarian_id" binding:"omitempty"` // admins may create on behalf of a librarian
}

// UpdateBookRequest represents the request body for updating a book
type UpdateBookRequest struct {
	Title       string   `json:"title" binding:"omitempty"`
	Author      string   `json:"author" binding:"omitempty"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Category    string   `json:"category" binding:"omitempty"`
	Description string   `json:"description" binding:"omitempty"`
}

// UpdateBookStatusRequest represents the request body for toggling publish state
type UpdateBookStatusRequest struct {
	Status models.BookStatus `json:"status" binding:"required"`
}

// bookSortColumns maps the fixed sort vocabulary onto ORDER BY clauses.
var bookSortColumns = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"name_asc":   "title ASC",
	"name_desc":  "title DESC",
}

// attachCoverURL fills the computed CoverURL field from the image service.
func attachCoverURL(book *models.Book) {
	if book.CoverS3Key == nil || *book.CoverS3Key == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	if url, err := imageService.GetImageURL(*book.CoverS3Key); err == nil && url != "" {
		book.CoverURL = &url
	}
}

// ListBooks handles GET /api/v1/books - public listing of published books
// Supports q (case-insensitive title search), sort, page and limit.
func ListBooks(c *gin.Context) {
	listBooks(c, true)
}

// ListAllBooks handles GET /api/v1/books/all - unfiltered listing (admins only)
func ListAllBooks(c *gin.Context) {
	listBooks(c, false)
}

func listBooks(c *gin.Context, publishedOnly bool) {
	sort := c.DefaultQuery("sort", "newest")
	orderBy, ok := bookSortColumns[sort]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Sort must be one of: newest, price_asc, price_desc, name_asc, name_desc",
			},
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	db := config.GetDB()
	query := db.Model(&models.Book{})
	if publishedOnly {
		query = query.Where("status = ?", models.BookStatusPublished)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("lower(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count books",
			},
		})
		return
	}

	var books []models.Book
	if err := query.Order(orderBy).Offset((page - 1) * limit).Limit(limit).Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list books",
			},
		})
		return
	}

	for i := range books {
		attachCoverURL(&books[i])
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(limit)))

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Books retrieved",
		"data":        books,
		"count":       len(books),
		"page":        page,
		"total_pages": totalPages,
		"total_count": totalCount,
	})
}

// ListMyBooks handles GET /api/v1/books/mine - books managed by the
// requesting librarian (librarians and admins)
func ListMyBooks(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var books []models.Book
	if err := db.Where("librarian_id = ?", user.ID).Order("created_at DESC").Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list books",
			},
		})
		return
	}

	for i := range books {
		attachCoverURL(&books[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Books retrieved",
		"data":    books,
		"count":   len(books),
	})
}

// GetBook handles GET /api/v1/books/:id - fetches one book
// Unpublished books are only visible to their owning librarian and admins.
func GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var book models.Book
	if err := db.Preload("Librarian").First(&book, bookID).Error; err != nil {
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
		user, err := middleware.CurrentUser(c)
		if err != nil || (book.LibrarianID != user.ID && !user.IsAdmin()) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BOOK_NOT_FOUND",
					"message": "Book not found",
				},
			})
			return
		}
	}

	attachCoverURL(&book)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book retrieved",
		"data":    book,
	})
}

// CreateBook handles POST /api/v1/books - creates a book (librarians and admins)
func CreateBook(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req CreateBookRequest
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

	status := req.Status
	if status == "" {
		status = models.BookStatusUnpublished
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Status must be one of: published, unpublished",
			},
		})
		return
	}

	db := config.GetDB()

	// The creator owns the book. Admins may assign ownership to a
	// named librarian instead.
	librarianID := user.ID
	if req.LibrarianID != 0 && req.LibrarianID != user.ID {
		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Only admins can create books for another librarian",
				},
			})
			return
		}

		var owner models.User
		if err := db.First(&owner, req.LibrarianID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "Assigned librarian not found",
				},
			})
			return
		}
		if owner.Role != models.RoleLibrarian && owner.Role != models.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_OWNER",
					"message": "Books can only be assigned to librarians",
				},
			})
			return
		}
		librarianID = owner.ID
	}

	book := models.Book{
		Title:       req.Title,
		Author:      req.Author,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Status:      status,
		LibrarianID: librarianID,
	}

	if err := db.Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create book",
			},
		})
		return
	}

	if err := db.Preload("Librarian").First(&book, book.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load book details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Book created",
		"data":    book,
	})
}

// UpdateBook handles PUT /api/v1/books/:id - updates a book (owner or admin)
func UpdateBook(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
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
				"message": "Only the owning librarian or an admin can update this book",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Author != "" {
		updates["author"] = req.Author
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Nothing to update",
			"data":    book,
		})
		return
	}

	if err := db.Model(&book).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update book",
			},
		})
		return
	}

	if err := db.Preload("Librarian").First(&book, book.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load book details",
			},
		})
		return
	}

	attachCoverURL(&book)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book updated",
		"data":    book,
	})
}

// UpdateBookStatus handles PATCH /api/v1/books/:id/status - toggles
// publish state (owner or admin)
func UpdateBookStatus(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookStatusRequest
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

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Status must be one of: published, unpublished",
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

	if book.LibrarianID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the owning librarian or an admin can change this book's status",
			},
		})
		return
	}

	if err := db.Model(&book).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update book status",
			},
		})
		return
	}

	book.Status = req.Status
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book status updated",
		"data":    book,
	})
}

// DeleteBook handles DELETE /api/v1/books/:id - deletes a book (admins only)
// The delete cascades synchronously to orders, wishlist entries and
// reviews referencing the book; no orphaned references are permitted.
func DeleteBook(c *gin.Context) {
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

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.WishlistEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete book",
			},
		})
		return
	}

	// Best-effort cover cleanup once the rows are gone.
	if book.CoverS3Key != nil && *book.CoverS3Key != "" {
		if imageService := services.GetImageService(); imageService != nil {
			_ = imageService.DeleteImage(*book.CoverS3Key)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book and all dependent records deleted",
	})
}
