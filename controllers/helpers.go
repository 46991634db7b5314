package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bookhaven/bookhaven-api/middleware"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
)

// getCurrentUser extracts the resolved user from the context, writing
// the 401 envelope itself when resolution failed.
func getCurrentUser(c *gin.Context) (models.User, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}
	return user, true
}

// parseIDParam parses a numeric URL parameter, writing the 400 envelope
// itself on malformed input.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// Works with both PostgreSQL and SQLite message formats.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
