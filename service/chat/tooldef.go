package chat

import (
	"encoding/json"
	"log/slog"

	"vanta-agent-backend/model"
	"vanta-agent-backend/service/provider"
)

// ToolDefinitions 把工具的参数 schema 转成各供应商适配器统一的声明形式。
// schema 不合法的工具跳过不上报，坏数据不拖垮整轮对话
func ToolDefinitions(tools []model.Tool) []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		params := provider.ToolParameters{Type: "object"}
		if len(t.InputSchema) > 0 {
			if err := json.Unmarshal(t.InputSchema, &params); err != nil {
				slog.Warn("Skipping tool with invalid input schema", "tool", t.Name, "err", err)
				continue
			}
			if params.Type == "" {
				params.Type = "object"
			}
		}
		defs = append(defs, provider.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return defs
}
