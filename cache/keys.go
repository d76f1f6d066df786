package cache

import (
	"fmt"
	"time"
)

const (
	TTLAgent     = 300 * time.Second
	TTLWorkspace = 600 * time.Second
)

func AgentKey(agentID string) string {
	return fmt.Sprintf("agent:%s", agentID)
}

func WorkspaceKey(workspaceID string) string {
	return fmt.Sprintf("workspace:%s", workspaceID)
}

// RateLimitKey 固定窗口限流计数器键，windowStart 为窗口起点毫秒时间戳
func RateLimitKey(scope string, windowStart int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", scope, windowStart)
}
