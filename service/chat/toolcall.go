package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
	"vanta-agent-backend/security"
	"vanta-agent-backend/service/provider"
	"vanta-agent-backend/service/tool"
)

// ExecuteToolCall 执行模型请求的一次工具调用：
// 先落 RUNNING 记录，执行后写终态，输出净化后再交还模型
func ExecuteToolCall(ctx context.Context, toolCall *provider.ToolCall, registry *tool.Registry, executor *tool.Executor, execCtx tool.Context) tool.Result {
	t := registry.GetByName(toolCall.Function.Name)
	if t == nil {
		return tool.Result{
			Success: false,
			Error:   fmt.Sprintf("Tool not found: %s", toolCall.Function.Name),
		}
	}

	slog.Info("Tool call requested", "tool", t.Name, "session_id", execCtx.SessionID)

	var parameters map[string]any
	args := toolCall.Function.Arguments
	if args == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), &parameters); err != nil {
		return tool.Result{
			Success: false,
			Error:   fmt.Sprintf("invalid tool arguments: %v", err),
		}
	}

	execution := &model.ToolExecution{
		SessionID: execCtx.SessionID,
		ToolID:    t.ID,
		Input:     json.RawMessage(args),
		Status:    model.ToolExecutionStatusRunning,
	}
	if err := dao.CreateToolExecution(ctx, execution); err != nil {
		slog.Error("Failed to record tool execution", "tool", t.Name, "err", err)
	}

	result := executor.Execute(ctx, t.ID, parameters, execCtx)

	slog.Info("Tool call finished",
		"tool", t.Name,
		"success", result.Success,
		"latency_ms", result.LatencyMs,
		"err", result.Error,
	)

	// 客户端委托型工具不在此写终态：载荷带上执行记录号与回报凭证，
	// 嵌入端在访客侧执行完毕后调用回报接口收尾，记录保持 RUNNING
	if bp, ok := result.Data.(tool.BridgePayload); ok {
		if execution.ID != 0 {
			bp.ExecutionID = execution.ID
			if token, err := security.GenerateBridgeToken(execution.ID, execCtx.SessionID); err == nil {
				bp.Token = token
			} else {
				slog.Error("Failed to generate bridge token", "tool", t.Name, "err", err)
			}
		}
		result.Data = bp
		return result
	}

	var output json.RawMessage
	if result.Data != nil {
		if raw, err := json.Marshal(result.Data); err == nil {
			output = raw
		}
	}
	if execution.ID != 0 {
		if err := dao.FinalizeToolExecution(ctx, execution.ID, output, result.Error, result.Success, result.LatencyMs); err != nil {
			slog.Error("Failed to finalize tool execution", "tool", t.Name, "err", err)
		}
	}

	result.Data = tool.WrapForModel(tool.SanitizeOutput(result.Data))
	return result
}
