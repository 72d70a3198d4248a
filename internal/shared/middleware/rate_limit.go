package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/shared"
	"returns-backend/internal/shared/response"
)

// CounterStore là phần của cache.Cache mà rate limiter cần
type CounterStore interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ActorRateLimit giới hạn số request của một actor (userID) trong một window
// Key: ratelimit:{scope}:{userID}
// Nếu store lỗi thì cho qua (fail open), chỉ log warning
func ActorRateLimit(store CounterStore, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || limit <= 0 {
			c.Next()
			return
		}

		actor, ok := c.Get(shared.CtxUserID)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%v", scope, actor)
		ctx := c.Request.Context()

		count, err := store.Increment(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := store.Expire(ctx, key, window); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to set rate limit window")
			}
		}

		if count > int64(limit) {
			response.TooManyRequests(c, "too many requests, please retry later")
			return
		}

		c.Next()
	}
}
