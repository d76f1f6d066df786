package dao

import (
	"context"
	"encoding/json"
	"time"

	"vanta-agent-backend/model"
)

// CreateToolExecution 调用发起前创建 RUNNING 记录
func CreateToolExecution(ctx context.Context, execution *model.ToolExecution) error {
	return DB.WithContext(ctx).Create(execution).Error
}

// FinalizeToolExecution 调用结束后写入终态
func FinalizeToolExecution(ctx context.Context, id uint, output json.RawMessage, errText string, success bool, latencyMs int64) error {
	status := model.ToolExecutionStatusSuccess
	if !success {
		status = model.ToolExecutionStatusFailed
	}
	now := time.Now()
	return DB.WithContext(ctx).
		Model(&model.ToolExecution{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"output":       output,
			"error":        errText,
			"status":       status,
			"latency_ms":   latencyMs,
			"completed_at": now,
		}).Error
}

func GetToolExecutionByID(ctx context.Context, id uint) (*model.ToolExecution, error) {
	var execution model.ToolExecution
	if err := DB.WithContext(ctx).
		Where("id = ?", id).
		First(&execution).Error; err != nil {
		return nil, err
	}
	return &execution, nil
}
