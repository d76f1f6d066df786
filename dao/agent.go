package dao

import (
	"context"

	"vanta-agent-backend/model"
)

// GetAgentWithWorkspace 加载 Agent 及其所属工作区
func GetAgentWithWorkspace(ctx context.Context, agentID string) (*model.Agent, error) {
	var agent model.Agent
	if err := DB.WithContext(ctx).
		Preload("Workspace").
		Where("id = ?", agentID).
		First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetAgentWithTools 加载 Agent 及其启用的工具
func GetAgentWithTools(ctx context.Context, agentID string) (*model.Agent, error) {
	var agent model.Agent
	if err := DB.WithContext(ctx).
		Preload("Tools", "is_active = ?", true).
		Where("id = ?", agentID).
		First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func GetAgentWorkspaceID(ctx context.Context, agentID string) (string, error) {
	var agent model.Agent
	if err := DB.WithContext(ctx).
		Select("workspace_id").
		Where("id = ?", agentID).
		First(&agent).Error; err != nil {
		return "", err
	}
	return agent.WorkspaceID, nil
}
