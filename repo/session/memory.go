package session

import (
	"context"
	"sync"
	"time"

	"github.com/HildaM/logs/slog"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore 进程内会话存储，空闲超过 ttl 的会话自动过期
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
	max   int

	mu    sync.Mutex // 保护容量检查与写入
	locks *KeyedMutex
}

// NewMemoryStore 创建实例；ttl <= 0 不过期，max <= 0 不限数量
func NewMemoryStore(ttl, cleanup time.Duration, max int) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
		max:   max,
		locks: NewKeyedMutex(),
	}
}

// Get 读取历史并刷新过期时间
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	v, found := m.cache.Get(key)
	if !found {
		return "", nil
	}
	history, _ := v.(string)
	m.cache.Set(key, history, m.ttl)
	return history, nil
}

// Put 写入历史，新会话超出上限时淘汰最早过期的会话
func (m *MemoryStore) Put(ctx context.Context, key, history string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.cache.Get(key); !found && m.max > 0 && m.cache.ItemCount() >= m.max {
		m.evict()
	}
	m.cache.Set(key, history, m.ttl)
	return nil
}

// Lock 同一会话互斥
func (m *MemoryStore) Lock(key string) func() {
	return m.locks.Lock(key)
}

// Len 当前会话数
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}

// evict 淘汰过期时间最早的会话
func (m *MemoryStore) evict() {
	var (
		oldest    string
		oldestExp int64
	)
	for key, item := range m.cache.Items() {
		if oldest == "" || item.Expiration < oldestExp {
			oldest, oldestExp = key, item.Expiration
		}
	}
	if oldest != "" {
		slog.Debug("evict debug, session store full, evict = %s", oldest)
		m.cache.Delete(oldest)
	}
}
