package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bookhaven/bookhaven-api/tests/testutil"
	"github.com/stretchr/testify/assert"
)

// TestServerStartup is an acceptance test that verifies the full
// application router can be constructed.
func TestServerStartup(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	router := newTestRouter(t)
	assert.NotNil(t, router, "Router should be initialized")
}

// TestAPIHealthEndpointAcceptance simulates a real HTTP request to
// verify the API works as a client would see it.
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	router := newTestRouter(t)

	req, err := http.NewRequest("GET", "/api/v1/health", nil)
	assert.NoError(t, err, "Should be able to create request")

	recorder := &testResponseWriter{header: make(http.Header)}
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.statusCode, "Health endpoint should return 200 OK")

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err = json.Unmarshal(recorder.body, &response)
	assert.NoError(t, err, "Response should be valid JSON")

	assert.True(t, response.Success, "Success field should be true")
	assert.Equal(t, "BookHaven API is running", response.Message)
}

// testResponseWriter is a minimal http.ResponseWriter for acceptance checks
type testResponseWriter struct {
	header     http.Header
	body       []byte
	statusCode int
}

func (w *testResponseWriter) Header() http.Header {
	return w.header
}

func (w *testResponseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return len(b), nil
}

func (w *testResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}
