package dao

import (
	"context"

	"vanta-agent-backend/model"
)

func GetSessionByID(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := DB.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func CreateSession(ctx context.Context, session *model.ChatSession) error {
	return DB.WithContext(ctx).Create(session).Error
}

func TouchSession(ctx context.Context, sessionID string) error {
	return DB.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Update("updated_at", DB.NowFunc()).Error
}

// GetRecentMessages 按时间倒序取最近 limit 条消息（组装 prompt 前需自行反转回时间正序）
func GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessagesBySessionID 按时间正序取全量消息，供会话回放
func GetMessagesBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	if err := DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func CreateMessage(ctx context.Context, message *model.Message) error {
	return DB.WithContext(ctx).Create(message).Error
}
