package middleware

import (
	"net/http"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/gin-gonic/gin"
)

// currentUserKey is the Gin context key under which the resolved user
// record is stored.
const currentUserKey = "current_user"

// ResolveUser looks up the persisted user record for the authenticated
// principal and stores it in the context. First-seen principals are
// auto-provisioned with the default "user" role when the token carries
// identity claims; the role is never elevated here.
func ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		var user models.User
		if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err == nil {
			c.Set(currentUserKey, user)
			c.Next()
			return
		}

		// No record yet. Provision one from the token's identity claims
		// if present; otherwise the client must call POST /users first.
		claims, claimsErr := GetClaims(c)
		if claimsErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract token claims",
				},
			})
			c.Abort()
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || customClaims.Email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_REQUIRED",
					"message": "User profile not found. Please create a profile first.",
				},
			})
			c.Abort()
			return
		}

		name := customClaims.Name
		if name == "" {
			name = customClaims.Email
		}

		user = models.User{
			Auth0ID: auth0ID,
			Name:    name,
			Email:   customClaims.Email,
			Role:    models.RoleUser,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to provision user record",
				},
			})
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser extracts the resolved user record from the Gin context
func CurrentUser(c *gin.Context) (models.User, error) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(models.User)
	if !ok {
		return models.User{}, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return user, nil
}

// SetCurrentUser stores a user record in the Gin context (primarily for testing)
func SetCurrentUser(c *gin.Context, user models.User) {
	c.Set(currentUserKey, user)
}

// RequireRole rejects the request with 403 unless the resolved user's
// role is in the allowed set. Librarian-gated routes must also list
// RoleAdmin: admin access is a set-membership superset, not a separate
// branch.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		for _, role := range allowed {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions to access this resource",
			},
		})
		c.Abort()
	}
}
