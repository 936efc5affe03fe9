package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vlasenko/contacts_api/internal/models"
)

type memoryItem struct {
	user    models.User
	expTime time.Time
}

// MemoryCache is a process-local SessionCache with the same TTL semantics as
// the redis adapter. Used when no redis address is configured and in tests.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	item, ok := m.items[key(email)]
	m.mu.RUnlock()

	if !ok || m.now().After(item.expTime) {
		return nil, ErrMiss
	}
	user := item.user
	return &user, nil
}

func (m *MemoryCache) Put(_ context.Context, email string, user *models.User) error {
	m.mu.Lock()
	m.items[key(email)] = memoryItem{user: *user, expTime: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, email string) error {
	m.mu.Lock()
	delete(m.items, key(email))
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries. Callers run it periodically; reads are already
// correct without it.
func (m *MemoryCache) Sweep() {
	now := m.now()
	m.mu.Lock()
	for k, item := range m.items {
		if now.After(item.expTime) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
}
