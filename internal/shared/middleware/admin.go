package middleware

import (
	"github.com/gin-gonic/gin"

	"returns-backend/internal/shared"
	"returns-backend/internal/shared/response"
)

// AdminMiddleware checks if user has admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Role được set bởi AuthMiddleware
		if role := c.GetString(shared.CtxRole); role != shared.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			return
		}

		c.Next()
	}
}
