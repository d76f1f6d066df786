package model

import (
	"encoding/json"
	"time"
)

const (
	ToolTypeRestAPI      = "REST_API"
	ToolTypeClientBridge = "CLIENT_BRIDGE"
	ToolTypeCustomCode   = "CUSTOM_CODE"

	ToolAuthNone   = "NONE"
	ToolAuthBearer = "BEARER"
	ToolAuthAPIKey = "API_KEY"
	ToolAuthBasic  = "BASIC"

	ToolExecutionStatusRunning = "RUNNING"
	ToolExecutionStatusSuccess = "SUCCESS"
	ToolExecutionStatusFailed  = "FAILED"
)

// Tool 归属于单个 Agent 的可调用能力
type Tool struct {
	ID                   string            `gorm:"primarykey" json:"id"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	AgentID              string            `gorm:"not null;index" json:"agent_id"`
	Name                 string            `gorm:"not null" json:"name"`
	Description          string            `gorm:"type:text" json:"description"`
	Type                 string            `gorm:"not null" json:"type"`
	Method               string            `json:"method"`
	Endpoint             string            `json:"endpoint"`
	Headers              map[string]string `gorm:"type:json;serializer:json" json:"headers"`
	BodyTemplate         json.RawMessage   `gorm:"type:json" json:"body_template"`
	AuthType             string            `gorm:"default:NONE" json:"auth_type"`
	AuthConfig           json.RawMessage   `gorm:"type:json" json:"-"`
	InputSchema          json.RawMessage   `gorm:"type:json" json:"input_schema"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	TimeoutMs            int               `gorm:"default:30000" json:"timeout_ms"`
	RetryCount           int               `gorm:"default:0" json:"retry_count"`
	CustomCode           string            `gorm:"type:text" json:"-"`
	IsActive             bool              `gorm:"default:true" json:"is_active"`
}

func (Tool) TableName() string {
	return "tool"
}

// ToolAuthConfig AuthConfig 字段的解码结构，按 AuthType 取对应字段
type ToolAuthConfig struct {
	Token      string `json:"token"`
	HeaderName string `json:"headerName"`
	APIKey     string `json:"apiKey"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (t *Tool) DecodeAuthConfig() (ToolAuthConfig, error) {
	var cfg ToolAuthConfig
	if len(t.AuthConfig) == 0 {
		return cfg, nil
	}
	err := json.Unmarshal(t.AuthConfig, &cfg)
	return cfg, err
}

// ToolExecution 每次工具调用一条记录。
// 调用前以 RUNNING 状态落库，调用结束后更新终态，
// 进程中途崩溃会留下永久 RUNNING 的记录，可被巡检发现
type ToolExecution struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	SessionID   string          `gorm:"not null;index" json:"session_id"`
	ToolID      string          `gorm:"not null;index" json:"tool_id"`
	Input       json.RawMessage `gorm:"type:json" json:"input"`
	Output      json.RawMessage `gorm:"type:json" json:"output"`
	Status      string          `gorm:"not null" json:"status"`
	Error       string          `gorm:"type:text" json:"error"`
	LatencyMs   int64           `json:"latency_ms"`
	CompletedAt *time.Time      `json:"completed_at"`
}

func (ToolExecution) TableName() string {
	return "tool_execution"
}
