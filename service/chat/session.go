package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
	"vanta-agent-backend/service/provider"

	"github.com/google/uuid"
)

// SessionParams 会话定位与新建所需的上下文
type SessionParams struct {
	ProvidedSessionID string
	WorkspaceID       string
	AgentID           string
	VisitorID         string
	VisitorEmail      string
	IP                string
	UserAgent         string
	Origin            string
	ContextWindow     int
}

// GetOrCreateSession 加载或透明新建会话。
// 调用方给的 session id 失效时不报错，直接建新会话（自愈），
// 返回按时间倒序的最近 ContextWindow 条历史
func GetOrCreateSession(ctx context.Context, params SessionParams) (*model.ChatSession, []model.Message, error) {
	if params.ProvidedSessionID != "" {
		session, err := dao.GetSessionByID(ctx, params.ProvidedSessionID)
		if err == nil {
			messages, err := dao.GetRecentMessages(ctx, session.ID, params.ContextWindow)
			if err != nil {
				return nil, nil, err
			}
			return session, messages, nil
		}
		slog.Warn("Session not found, creating new session", "session_id", params.ProvidedSessionID)
	}

	session := &model.ChatSession{
		ID:           uuid.New().String(),
		WorkspaceID:  params.WorkspaceID,
		AgentID:      params.AgentID,
		VisitorID:    params.VisitorID,
		VisitorEmail: params.VisitorEmail,
		IPAddress:    params.IP,
		UserAgent:    params.UserAgent,
		Origin:       params.Origin,
	}
	if err := dao.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	return session, nil, nil
}

func SaveUserMessage(ctx context.Context, sessionID, content string) error {
	return dao.CreateMessage(ctx, &model.Message{
		SessionID: sessionID,
		Role:      model.MessageRoleUser,
		Content:   content,
	})
}

// SaveAssistantMessage 流结束后持久化累积的助手回复
func SaveAssistantMessage(ctx context.Context, sessionID, content string, toolCalls []provider.ToolCall) error {
	msg := &model.Message{
		SessionID: sessionID,
		Role:      model.MessageRoleAssistant,
		Content:   content,
	}
	if len(toolCalls) > 0 {
		if raw, err := json.Marshal(toolCalls); err == nil {
			msg.ToolCalls = raw
		}
	}
	return dao.CreateMessage(ctx, msg)
}
