package model

import "time"

const (
	WorkspaceStatusActive    = "ACTIVE"
	WorkspaceStatusSuspended = "SUSPENDED"
)

type Workspace struct {
	ID        string    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"not null;default:ACTIVE" json:"status"`
}

func (Workspace) TableName() string {
	return "workspace"
}

// ProviderKey 工作区级别的模型供应商密钥，密文存储。
// 同一供应商至多一个默认密钥，调用时实时解密，不缓存在 Agent 上
type ProviderKey struct {
	ID           string    `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	WorkspaceID  string    `gorm:"not null;index" json:"workspace_id"`
	Provider     string    `gorm:"not null" json:"provider"`
	EncryptedKey string    `gorm:"type:text;not null" json:"-"`
	IsDefault    bool      `json:"is_default"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
}

func (ProviderKey) TableName() string {
	return "provider_key"
}

// ApiKey 工作区访问凭证，chat 请求携带后跳过 Origin 校验
type ApiKey struct {
	ID          string     `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	WorkspaceID string     `gorm:"not null;index" json:"workspace_id"`
	Key         string     `gorm:"not null;uniqueIndex" json:"-"`
	Name        string     `json:"name"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}

func (ApiKey) TableName() string {
	return "api_key"
}
