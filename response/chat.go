package response

import (
	"encoding/json"
	"time"
)

// EmbedToolResponse 嵌入端渲染确认弹窗所需的最小工具信息
type EmbedToolResponse struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Type                 string `json:"type"`
	RequiresConfirmation bool   `json:"requiresConfirmation"`
}

// EmbedResponse 公开的 Agent 描述符，不含任何凭据或内部配置
type EmbedResponse struct {
	AgentID string              `json:"agentId"`
	Name    string              `json:"name"`
	UIMode  string              `json:"uiMode"`
	Theme   json.RawMessage     `json:"theme,omitempty"`
	Tools   []EmbedToolResponse `json:"tools"`
}

type MessageResponse struct {
	CreatedAt  time.Time       `json:"createdAt"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	ToolCalls  json.RawMessage `json:"toolCalls,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
}

type GetSessionMessagesResponse struct {
	SessionID string            `json:"sessionId"`
	Messages  []MessageResponse `json:"messages"`
}

// ProvidersResponse 供应商到可用模型列表的目录
type ProvidersResponse struct {
	Providers map[string][]string `json:"providers"`
}
