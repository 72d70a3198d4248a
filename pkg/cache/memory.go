package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache là Cache in-process, dùng khi chạy test hoặc local không có Redis
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryCache) live(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && m.now().After(item.expiresAt) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	item, ok := m.live(key)
	m.mu.Unlock()
	if !ok || item.value == nil {
		return false, nil
	}
	return true, json.Unmarshal(item.value, dest)
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item := memoryItem{value: data}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, _ := m.live(key)
	item.counter++
	m.items[key] = item
	return item.counter, nil
}

func (m *MemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.live(key); ok {
		item.expiresAt = m.now().Add(ttl)
		m.items[key] = item
	}
	return nil
}

// TTL trả -1 nếu key không có expiry, -2 nếu key không tồn tại (giống Redis)
func (m *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.live(key)
	if !ok {
		return -2, nil
	}
	if item.expiresAt.IsZero() {
		return -1, nil
	}
	return item.expiresAt.Sub(m.now()), nil
}
