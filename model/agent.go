package model

import (
	"encoding/json"
	"time"
)

const (
	ProviderOpenAI     = "OPENAI"
	ProviderGemini     = "GEMINI"
	ProviderGroq       = "GROQ"
	ProviderOpenRouter = "OPENROUTER"
)

type Agent struct {
	ID             string          `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	WorkspaceID    string          `gorm:"not null;index" json:"workspace_id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	SystemPrompt   string          `gorm:"type:text;not null" json:"system_prompt"`
	Provider       string          `gorm:"not null" json:"provider"`
	Model          string          `gorm:"not null" json:"model"`
	Temperature    float64         `gorm:"default:0.7" json:"temperature"`
	MaxTokens      int             `gorm:"default:2048" json:"max_tokens"`
	ContextWindow  int             `gorm:"default:10" json:"context_window"`
	Theme          json.RawMessage `gorm:"type:json" json:"theme"`
	UIMode         string          `gorm:"default:EMBEDDED" json:"ui_mode"`
	AllowedDomains []string        `gorm:"type:json;serializer:json" json:"allowed_domains"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Tools     []Tool     `gorm:"foreignKey:AgentID" json:"tools,omitempty"`
}

func (Agent) TableName() string {
	return "agent"
}

// Mood 从 theme 配置中取出 persona 语气约束
func (a *Agent) Mood() string {
	if len(a.Theme) == 0 {
		return ""
	}
	var theme struct {
		Mood string `json:"mood"`
	}
	if err := json.Unmarshal(a.Theme, &theme); err != nil {
		return ""
	}
	return theme.Mood
}
