package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 redis 的会话存储，多实例共享
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	locks  *KeyedMutex
}

// NewRedisStore 创建实例；ttl <= 0 不过期
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, locks: NewKeyedMutex()}
}

// Get 读取历史并刷新过期时间
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	k := r.prefix + key
	history, err := r.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session %s: %w", key, err)
	}
	if r.ttl > 0 {
		r.client.Expire(ctx, k, r.ttl)
	}
	return history, nil
}

// Put 覆盖写入历史
func (r *RedisStore) Put(ctx context.Context, key, history string) error {
	if err := r.client.Set(ctx, r.prefix+key, history, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", key, err)
	}
	return nil
}

// Lock 进程内互斥，跨实例的同一会话请求不做串行化
func (r *RedisStore) Lock(key string) func() {
	return r.locks.Lock(key)
}
