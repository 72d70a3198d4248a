package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/shared"
	"returns-backend/internal/shared/response"
	"returns-backend/pkg/jwt"
)

// AuthMiddleware - Middleware xác thực JWT token
// Set "userID" (uuid.UUID) và "role" (string) vào gin context
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		// 3. Verify và parse JWT
		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString("request_id")).Msg("token rejected")
			response.Unauthorized(c, "invalid token")
			return
		}

		// 4. Convert user_id sang uuid.UUID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			return
		}

		c.Set(shared.CtxUserID, userID)
		c.Set(shared.CtxRole, claims.Role)

		c.Next()
	}
}
