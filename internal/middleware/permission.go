package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulokalleby/api-vendas/internal/permission"
)

// RequirePermission gates a route group on one resource. The required
// action follows the HTTP method: GET views, POST creates, PUT and
// PATCH update, DELETE deletes. Must run after Auth.
func RequirePermission(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, ok := permission.ActionForMethod(c.Request.Method)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			c.Abort()
			return
		}

		session := SessionFrom(c)
		if !session.Perms.Allows(resource, action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
