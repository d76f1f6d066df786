package model

import "time"

const UsageEventChatMessage = "CHAT_MESSAGE"

// UsageLog 每轮对话一条用量记录，token 数为 ceil(len/4) 估算值，
// 供核心之外的成本分析汇总使用
type UsageLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	WorkspaceID  string    `gorm:"not null;index" json:"workspace_id"`
	EventType    string    `gorm:"not null" json:"event_type"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	TokensInput  int       `json:"tokens_input"`
	TokensOutput int       `json:"tokens_output"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Origin       string    `json:"origin"`
}

func (UsageLog) TableName() string {
	return "usage_log"
}
