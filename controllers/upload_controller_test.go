package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookhaven/bookhaven-api/models"
	"github.com/bookhaven/bookhaven-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// performUpload sends a multipart request with a single "image" part.
func performUpload(router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", filename)
	part.Write(content)
	writer.Close()

	req, _ := http.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadBookCover(t *testing.T) {
	db := setupTestDB(t)

	mock := services.NewMockImageService()
	mock.SetAsMockForTesting()
	t.Cleanup(func() { services.SetImageService(nil) })

	librarian := seedUser(t, db, "auth0|up-lib1", "up-lib1@example.com", models.RoleLibrarian)
	other := seedUser(t, db, "auth0|up-lib2", "up-lib2@example.com", models.RoleLibrarian)
	book := seedBook(t, db, librarian.ID, "Covered", 15.00, models.BookStatusPublished)
	path := fmt.Sprintf("/books/%d/cover", book.ID)

	t.Run("owner uploads a PNG cover", func(t *testing.T) {
		router := newAuthedRouter(librarian)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performUpload(router, path, "cover.png", []byte("png-bytes"))
		assert.Equal(t, http.StatusOK, w.Code)

		var stored models.Book
		db.First(&stored, book.ID)
		assert.NotNil(t, stored.CoverS3Key)
		assert.True(t, mock.ImageExists(*stored.CoverS3Key))

		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.NotEmpty(t, data["cover_url"])
	})

	t.Run("replacing the cover deletes the old object", func(t *testing.T) {
		var before models.Book
		db.First(&before, book.ID)
		oldKey := *before.CoverS3Key

		router := newAuthedRouter(librarian)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performUpload(router, path, "cover2.png", []byte("newer-bytes"))
		assert.Equal(t, http.StatusOK, w.Code)

		assert.False(t, mock.ImageExists(oldKey), "replaced cover must be cleaned up")

		var after models.Book
		db.First(&after, book.ID)
		assert.NotEqual(t, oldKey, *after.CoverS3Key)
	})

	t.Run("non-PNG files are rejected", func(t *testing.T) {
		router := newAuthedRouter(librarian)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performUpload(router, path, "cover.jpg", []byte("jpeg-bytes"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(decodeResponse(t, w)))
	})

	t.Run("missing file part is rejected", func(t *testing.T) {
		router := newAuthedRouter(librarian)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performRequest(router, "POST", path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_FILE", errorCode(decodeResponse(t, w)))
	})

	t.Run("non-owning librarian is forbidden", func(t *testing.T) {
		router := newAuthedRouter(other)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performUpload(router, path, "cover.png", []byte("png-bytes"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(decodeResponse(t, w)))
	})

	t.Run("unknown book is a 404", func(t *testing.T) {
		router := newAuthedRouter(librarian)
		router.POST("/books/:id/cover", UploadBookCover)

		w := performUpload(router, "/books/99999/cover", "cover.png", []byte("png-bytes"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUploadBookCoverWithoutStorage(t *testing.T) {
	db := setupTestDB(t)
	services.SetImageService(nil)

	librarian := seedUser(t, db, "auth0|up-lib3", "up-lib3@example.com", models.RoleLibrarian)
	book := seedBook(t, db, librarian.ID, "Bare", 5.00, models.BookStatusPublished)

	router := newAuthedRouter(librarian)
	router.POST("/books/:id/cover", UploadBookCover)

	w := performUpload(router, fmt.Sprintf("/books/%d/cover", book.ID), "cover.png", []byte("png-bytes"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", errorCode(decodeResponse(t, w)))
}
