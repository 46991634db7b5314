package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/bookhaven/bookhaven-api/utils"
	"github.com/stretchr/testify/assert"
)

// makeFileHeader builds a multipart.FileHeader carrying the given
// filename and content, the way gin's FormFile would produce it.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestS3ImageServiceUpload(t *testing.T) {
	mockS3 := NewMockS3Service()
	mockS3.SetAsMockForTesting()
	t.Cleanup(func() { SetS3Service(nil) })

	service := InitImageService(GetS3Service())
	t.Cleanup(func() { SetImageService(nil) })

	t.Run("uploads a valid PNG under the covers prefix", func(t *testing.T) {
		header := makeFileHeader(t, "front.png", []byte("png-bytes"))

		key, err := service.UploadImage(header)
		assert.NoError(t, err)
		assert.Contains(t, key, "covers/")
		assert.True(t, mockS3.FileExists(key))
	})

	t.Run("rejects non-PNG files before touching storage", func(t *testing.T) {
		header := makeFileHeader(t, "front.gif", []byte("gif-bytes"))

		_, err := service.UploadImage(header)
		var uploadErr *utils.FileUploadError
		assert.True(t, errors.As(err, &uploadErr))
		assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
		assert.False(t, mockS3.FileExists("covers/mock_front.gif"))
	})
}

func TestS3ImageServiceURLAndDelete(t *testing.T) {
	mockS3 := NewMockS3Service()
	service := &S3ImageService{s3Service: mockS3}

	header := makeFileHeader(t, "pic.png", []byte("png-bytes"))
	key, err := service.UploadImage(header)
	assert.NoError(t, err)

	t.Run("presigned URL references the stored key", func(t *testing.T) {
		url, err := service.GetImageURL(key)
		assert.NoError(t, err)
		assert.Contains(t, url, key)
	})

	t.Run("empty key yields no URL and no error", func(t *testing.T) {
		url, err := service.GetImageURL("")
		assert.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("delete removes the object", func(t *testing.T) {
		assert.NoError(t, service.DeleteImage(key))
		assert.False(t, mockS3.FileExists(key))

		_, err := service.GetImageURL(key)
		assert.Error(t, err)
	})

	t.Run("deleting an empty key is a no-op", func(t *testing.T) {
		assert.NoError(t, service.DeleteImage(""))
	})
}
