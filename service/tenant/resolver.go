// Package tenant 校验 Agent/工作区归属与来源域授权。
// 缓存优先，缓存故障只增加时延，绝不拖垮请求
package tenant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"vanta-agent-backend/cache"
	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
)

const (
	ErrAgentNotFound     = "Agent not found"
	ErrAgentInactive     = "Agent is not active"
	ErrWorkspaceInactive = "Workspace is not active"
	ErrDomainNotAllowed  = "Domain not allowed"
)

// Context 租户解析结果
type Context struct {
	WorkspaceID string `json:"workspace_id"`
	AgentID     string `json:"agent_id"`
	Origin      string `json:"origin"`
	IsValid     bool   `json:"is_valid"`
	Error       string `json:"error,omitempty"`
}

// Resolve 按序校验：Agent 存在、Agent 启用、工作区正常、来源域名在白名单内。
// 白名单非空但请求没带 Origin 时不在本层拦截（来源校验是尽力而为，
// 不是唯一信任边界）
func Resolve(ctx context.Context, agentID, requestOrigin string) Context {
	result := Context{AgentID: agentID, Origin: requestOrigin}

	agent, err := loadAgent(ctx, agentID)
	if err != nil {
		result.Error = ErrAgentNotFound
		return result
	}

	result.WorkspaceID = agent.WorkspaceID

	if !agent.IsActive {
		result.Error = ErrAgentInactive
		return result
	}
	if agent.Workspace == nil || agent.Workspace.Status != model.WorkspaceStatusActive {
		result.Error = ErrWorkspaceInactive
		return result
	}

	if requestOrigin != "" && len(agent.AllowedDomains) > 0 {
		if !originAllowed(requestOrigin, agent.AllowedDomains) {
			result.Error = ErrDomainNotAllowed
			return result
		}
	}

	result.IsValid = true
	return result
}

// loadAgent 缓存优先，未命中或缓存故障回源数据库并尽力回填
func loadAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	key := cache.AgentKey(agentID)

	if cached, ok := cache.Get(ctx, key); ok {
		var agent model.Agent
		if err := json.Unmarshal([]byte(cached), &agent); err == nil {
			return &agent, nil
		}
		slog.Warn("Invalid cached agent entry, falling back to store", "agent_id", agentID)
	}

	agent, err := dao.GetAgentWithWorkspace(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(agent); err == nil {
		cache.SetEx(ctx, key, string(data), cache.TTLAgent)
	}

	return agent, nil
}

// originAllowed 精确匹配或 *.suffix 通配匹配来源主机名
func originAllowed(origin string, allowedDomains []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	hostname := parsed.Hostname()

	for _, domain := range allowedDomains {
		if strings.HasPrefix(domain, "*.") {
			suffix := domain[2:]
			// 只匹配完整的子域边界，evil-example.com 不能冒充 *.example.com
			if hostname == suffix || strings.HasSuffix(hostname, "."+suffix) {
				return true
			}
			continue
		}
		if hostname == domain {
			return true
		}
	}
	return false
}
