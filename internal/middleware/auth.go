package middleware

import (
	"strings"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	KeyUserID = "userId"
	KeyRole   = "userRole"
	KeyEmail  = "userEmail"
)

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter used by websocket clients.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(KeyUserID, claims.ID)
	c.Set(KeyRole, claims.Role)
	c.Set(KeyEmail, claims.Email)
}

// AuthMiddleware requires a valid token.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through but rejects a token that was
// sent and does not verify.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("token") == "" {
			c.Next()
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}
		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(KeyRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(403, gin.H{"error": "Forbidden"})
	}
}

// Role returns the caller's role, empty when anonymous.
func Role(c *gin.Context) models.Role {
	role, _ := c.Get(KeyRole)
	r, _ := role.(models.Role)
	return r
}
