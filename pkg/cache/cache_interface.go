package cache

import (
	"context"
	"time"
)

// Store giữ value dạng JSON theo key.
// Get trả found=false khi miss, dest giữ nguyên.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Counter là counter nguyên tử có TTL (ratelimit:{scope}:{actor})
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Cache: Redis ở server/worker, MemoryCache khi test hoặc local
type Cache interface {
	Store
	Counter
	Ping(ctx context.Context) error
}

var _ Cache = (*MemoryCache)(nil)
