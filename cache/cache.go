// Package cache 封装共享 Redis 缓存。
// 缓存只是延迟优化，所有调用方必须容忍它不可用：
// Client 可能为 nil（未配置），读写失败只降级不报错。
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 全局 Redis 实例，未配置 Redis 时为 nil
var Client *redis.Client

func Init(addr, password string, db int) {
	if addr == "" {
		slog.Warn("Redis address not configured, cache disabled")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		MaxRetries: 3,
	})
}

func Enabled() bool {
	return Client != nil
}

// Get 缓存未命中或不可用时返回 false
func Get(ctx context.Context, key string) (string, bool) {
	if Client == nil {
		return "", false
	}
	val, err := Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetEx 尽力写入，失败只记日志
func SetEx(ctx context.Context, key, value string, ttl time.Duration) {
	if Client == nil {
		return
	}
	if err := Client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("Failed to populate cache", "key", key, "err", err)
	}
}
