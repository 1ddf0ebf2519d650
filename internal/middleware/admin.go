package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/models"
)

// RequireAdmin rejects requests whose authenticated user does not carry
// the admin role. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRoleKey)
		if !exists || role.(models.Role) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
