// Package ratelimit 基于共享缓存的固定窗口计数限流。
// 计数存储不可用时放行（fail-open）：可用性优先于严格限流
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"vanta-agent-backend/cache"
)

type Config struct {
	// Requests 单窗口允许的请求数
	Requests int

	// Window 窗口长度
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{
		Requests: 100,
		Window:   60 * time.Second,
	}
}

// Status 一次限流判定的结果，Reset 为当前窗口的结束时间
type Status struct {
	Success   bool  `json:"success"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

type Limiter struct {
	cfg Config
}

func New(cfg Config) *Limiter {
	if cfg.Requests <= 0 {
		cfg.Requests = DefaultConfig().Requests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Limiter{cfg: cfg}
}

// Check 对 key 计一次数。窗口边界按 Window 对齐，
// 键形如 ratelimit:{scope}:{windowStart}，首次计数时设置窗口过期
func (l *Limiter) Check(ctx context.Context, key string) Status {
	now := time.Now().UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()
	windowStart := now / windowMs * windowMs
	reset := windowStart + windowMs

	if !cache.Enabled() {
		return l.bypass(now)
	}

	cacheKey := cache.RateLimitKey(key, windowStart)

	current, err := cache.Client.Incr(ctx, cacheKey).Result()
	if err != nil {
		slog.Error("Rate limiter store failed, bypassing rate limit", "key", key, "err", err)
		return l.bypass(now)
	}

	if current == 1 {
		if err := cache.Client.PExpire(ctx, cacheKey, l.cfg.Window).Err(); err != nil {
			slog.Warn("Failed to set rate limit window expiry", "key", cacheKey, "err", err)
		}
	}

	remaining := l.cfg.Requests - int(current)
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Success:   int(current) <= l.cfg.Requests,
		Remaining: remaining,
		Reset:     reset,
	}
}

// CheckAgent 按 Agent + 来源 IP 维度限流
func (l *Limiter) CheckAgent(ctx context.Context, agentID, ip string) Status {
	key := "agent:" + agentID
	if ip != "" {
		key += ":ip:" + ip
	}
	return l.Check(ctx, key)
}

func (l *Limiter) CheckWorkspace(ctx context.Context, workspaceID string) Status {
	return l.Check(ctx, "workspace:"+workspaceID)
}

func (l *Limiter) bypass(nowMs int64) Status {
	return Status{
		Success:   true,
		Remaining: l.cfg.Requests,
		Reset:     nowMs + l.cfg.Window.Milliseconds(),
	}
}
