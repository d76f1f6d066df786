package dao

import (
	"context"
	"time"

	"vanta-agent-backend/model"
)

// GetDefaultProviderKey 取工作区内指定供应商的密钥，默认密钥优先
func GetDefaultProviderKey(ctx context.Context, workspaceID, provider string) (*model.ProviderKey, error) {
	var key model.ProviderKey
	if err := DB.WithContext(ctx).
		Where("workspace_id = ? AND provider = ? AND is_active = ?", workspaceID, provider, true).
		Order("is_default DESC").
		First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func GetApiKey(ctx context.Context, key string) (*model.ApiKey, error) {
	var apiKey model.ApiKey
	if err := DB.WithContext(ctx).
		Where("`key` = ?", key).
		First(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

func TouchApiKeyLastUsed(ctx context.Context, id string) error {
	now := time.Now()
	return DB.WithContext(ctx).
		Model(&model.ApiKey{}).
		Where("id = ?", id).
		Update("last_used_at", now).Error
}
