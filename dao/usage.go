package dao

import (
	"context"

	"vanta-agent-backend/model"
)

func CreateUsageLog(ctx context.Context, usage *model.UsageLog) error {
	return DB.WithContext(ctx).Create(usage).Error
}
