package session

import (
	"context"
	"fmt"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/redis/go-redis/v9"
)

// Store 会话历史存储，key 为调用方标识
type Store interface {
	// Get 读取历史，不存在时返回空串
	Get(ctx context.Context, key string) (string, error)
	// Put 覆盖写入历史
	Put(ctx context.Context, key, history string) error
	// Lock 串行化同一会话的请求，返回解锁函数
	Lock(key string) (unlock func())
}

// New 按配置创建会话存储
func New(ctx context.Context, cfg conf.SessionConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	switch cfg.Backend {
	case "", "memory":
		cleanup := time.Duration(cfg.CleanupMinutes) * time.Minute
		slog.Info("New info, session backend = memory, ttl = %v, max = %d", ttl, cfg.MaxSessions)
		return NewMemoryStore(ttl, cleanup, cfg.MaxSessions), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		slog.Info("New info, session backend = redis, addr = %s, ttl = %v", cfg.Redis.Addr, ttl)
		return NewRedisStore(client, cfg.Redis.Prefix, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
