package model

import (
	"encoding/json"
	"time"
)

const (
	MessageRoleUser      = "USER"
	MessageRoleAssistant = "ASSISTANT"
	MessageRoleTool      = "TOOL"
)

// ChatSession 一个访客与一个 Agent 的会话
type ChatSession struct {
	ID           string    `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	WorkspaceID  string    `gorm:"not null;index" json:"workspace_id"`
	AgentID      string    `gorm:"not null;index" json:"agent_id"`
	VisitorID    string    `json:"visitor_id"`
	VisitorEmail string    `json:"visitor_email"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Origin       string    `json:"origin"`
}

func (ChatSession) TableName() string {
	return "chat_session"
}

// Message 只追加不修改，建立联合索引 (session_id, created_at)
type Message struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time       `gorm:"index:idx_session_created" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	SessionID  string          `gorm:"not null;index:idx_session_created" json:"session_id"`
	Role       string          `gorm:"not null" json:"role"`
	Content    string          `gorm:"type:text" json:"content"`
	ToolCalls  json.RawMessage `gorm:"type:json" json:"tool_calls"`
	ToolCallID string          `json:"tool_call_id"`
}

func (Message) TableName() string {
	return "chat_message"
}
