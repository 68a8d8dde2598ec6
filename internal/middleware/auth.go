package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"groupchat/api/internal/service"
)

const UserIDKey = "user_id"

// Auth validates the bearer token and stores the subject user ID on the
// request context. The token carries its own claims, so no identity
// store lookup happens here; only the revocation check inside Validate
// touches a store.
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "authentication token is missing")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := auth.Validate(c.Request.Context(), tokenStr)
		if err != nil {
			abortUnauthorized(c, "invalid or expired authentication token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   true,
		"message": message,
		"status":  http.StatusUnauthorized,
		"data":    nil,
	})
}

// UserID returns the authenticated user's ID set by Auth.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
