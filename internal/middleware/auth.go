package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/centuriocontact-dev/matching-interim-api/internal/auth"
	"github.com/centuriocontact-dev/matching-interim-api/internal/logger"
)

const (
	ContextUserID   = "userID"
	ContextClientID = "clientID"
	ContextRole     = "role"
)

// AuthMiddleware verifies the bearer token and stores the caller's
// identity, including the tenant anchor clientID, in the request
// context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClientID, claims.ClientID)
		c.Set(ContextRole, claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		ctx = logger.WithClientID(ctx, claims.ClientID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
