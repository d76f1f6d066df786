package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vanta-agent-backend/config"
	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
	"vanta-agent-backend/request"
	"vanta-agent-backend/response"
	"vanta-agent-backend/security"
	"vanta-agent-backend/service/chat"
	"vanta-agent-backend/service/provider"
	"vanta-agent-backend/service/ratelimit"
	"vanta-agent-backend/service/tenant"
	"vanta-agent-backend/service/tool"
	"vanta-agent-backend/service/usage"
	"vanta-agent-backend/utils"

	"github.com/gin-gonic/gin"
)

var limiter *ratelimit.Limiter

// Init 在配置加载后装配控制器依赖
func Init() {
	cfg := ratelimit.DefaultConfig()
	if config.Cfg.RateLimit.Requests > 0 {
		cfg.Requests = config.Cfg.RateLimit.Requests
	}
	if config.Cfg.RateLimit.WindowMs > 0 {
		cfg.Window = time.Duration(config.Cfg.RateLimit.WindowMs) * time.Millisecond
	}
	limiter = ratelimit.New(cfg)
}

// AgentChat 入站聊天请求的主编排：
// 校验 → 鉴权 → 租户解析 → 限流 → 组装上下文 → 流式生成 → 异步落库
func AgentChat(c *gin.Context) {
	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Error: ErrParseRequest.Error(),
		})
		return
	}

	origin := c.GetHeader("Origin")
	ip := c.ClientIP()
	reqCtx := c.Request.Context()

	// 可选的工作区 API key，验证通过后跳过来源域校验
	apiKeyAuthed := false
	apiKeyWorkspaceID := ""
	if key := bearerToken(c); key != "" {
		apiKey, err := dao.GetApiKey(reqCtx, key)
		if err != nil || !apiKey.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
				Error: ErrInvalidAPIKey.Error(),
			})
			return
		}
		apiKeyAuthed = true
		apiKeyWorkspaceID = apiKey.WorkspaceID

		// last_used_at 在关键路径之外更新
		go func(id string) {
			if err := dao.TouchApiKeyLastUsed(context.Background(), id); err != nil {
				slog.Warn("Failed to touch api key", "key_id", id, "err", err)
			}
		}(apiKey.ID)
	}

	resolveOrigin := origin
	if apiKeyAuthed {
		resolveOrigin = ""
	}
	tenantCtx := tenant.Resolve(reqCtx, req.AgentID, resolveOrigin)
	if !tenantCtx.IsValid {
		status := http.StatusForbidden
		if tenantCtx.Error == tenant.ErrAgentNotFound {
			status = http.StatusNotFound
		}
		c.AbortWithStatusJSON(status, response.Response{Error: tenantCtx.Error})
		return
	}
	if apiKeyAuthed && apiKeyWorkspaceID != tenantCtx.WorkspaceID {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Response{
			Error: ErrWorkspaceMismatch.Error(),
		})
		return
	}

	rl := limiter.CheckAgent(reqCtx, req.AgentID, ip)
	if !rl.Success {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response.RateLimitResponse{
			Error: ErrRateLimited.Error(),
			Reset: rl.Reset,
		})
		return
	}

	agent, err := dao.GetAgentWithTools(reqCtx, req.AgentID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Error: tenant.ErrAgentNotFound,
		})
		return
	}

	providerKey, err := dao.GetDefaultProviderKey(reqCtx, tenantCtx.WorkspaceID, agent.Provider)
	if err != nil {
		slog.Error(ErrProviderKeyNotFound.Error(), "agent_id", agent.ID, "provider", agent.Provider)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrProviderKeyNotFound.Error(),
		})
		return
	}
	secret, err := security.Default.Decrypt(providerKey.EncryptedKey)
	if err != nil {
		slog.Error("Failed to decrypt provider key", "key_id", providerKey.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrProviderKeyNotFound.Error(),
		})
		return
	}

	session, recent, err := chat.GetOrCreateSession(reqCtx, chat.SessionParams{
		ProvidedSessionID: req.SessionID,
		WorkspaceID:       tenantCtx.WorkspaceID,
		AgentID:           agent.ID,
		VisitorID:         req.VisitorID,
		VisitorEmail:      req.VisitorEmail,
		IP:                ip,
		UserAgent:         c.Request.UserAgent(),
		Origin:            origin,
		ContextWindow:     agent.ContextWindow,
	})
	if err != nil {
		slog.Error(ErrCreateSession.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrCreateSession.Error(),
		})
		return
	}
	if err := chat.SaveUserMessage(reqCtx, session.ID, req.Message); err != nil {
		slog.Error("Failed to save user message", "session_id", session.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrCreateSession.Error(),
		})
		return
	}

	adapter, err := provider.New(agent.Provider, provider.Config{
		APIKey:      secret,
		Model:       agent.Model,
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
		HTTPClient: utils.NewHTTPClient(
			utils.WithTimeout(time.Duration(config.Cfg.Chat.ProviderTimeoutSeconds) * time.Second),
		),
	})
	if err != nil {
		slog.Error(ErrCallModel.Error(), "provider", agent.Provider, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrCallModel.Error(),
		})
		return
	}

	registry := tool.NewRegistry()
	registry.RegisterMany(agent.Tools)
	executor := tool.NewExecutor(registry)
	execCtx := tool.Context{
		SessionID:   session.ID,
		AgentID:     agent.ID,
		WorkspaceID: tenantCtx.WorkspaceID,
		VisitorID:   req.VisitorID,
		Origin:      origin,
	}

	history := chat.BuildMessageHistory(chat.BuildSystemPrompt(agent), recent, req.Message)

	var toolDefs []provider.ToolDefinition
	if adapter.SupportsToolCalling() {
		toolDefs = chat.ToolDefinitions(agent.Tools)
	}

	var assistantText strings.Builder
	controller := chat.NewStreamController(adapter, history, toolDefs, chat.StreamControllerOptions{
		MaxToolRounds: config.Cfg.Chat.MaxToolRounds,
		OnToolCall: func(ctx context.Context, toolCall *provider.ToolCall) tool.Result {
			result := chat.ExecuteToolCall(ctx, toolCall, registry, executor, execCtx)
			if bp, ok := result.Data.(tool.BridgePayload); ok {
				// 委托载荷连同回报凭证发给客户端，凭证不进对话历史
				utils.SendSSEData(c, bp)
				bp.Token = ""
				result.Data = bp
			}
			return result
		},
	})

	utils.SetSSEHeaders(c)
	utils.SendSSEData(c, gin.H{"type": "session", "sessionId": session.ID})

	ctx, cancel := context.WithCancel(reqCtx)
	defer cancel()

	// 客户端断开时停止转发并取消在途的供应商和工具调用
	go func() {
		<-ctx.Done()
		controller.Stop()
	}()

	streamErr := controller.Stream(ctx, func(chunk provider.StreamChunk) {
		switch chunk.Type {
		case provider.ChunkContent:
			assistantText.WriteString(chunk.Content)
		case provider.ChunkToolCallEnd:
			// 适配器内部边界事件，不外发
			return
		}
		utils.SendSSEData(c, chunk)
	})
	if streamErr != nil {
		// 已发出的内容不回收，补一个错误帧后正常收尾
		slog.Error(ErrCallModel.Error(), "session_id", session.ID, "err", streamErr)
		utils.SendSSEData(c, gin.H{"type": "error", "error": ErrCallModel.Error()})
	}
	utils.SendSSEDone(c)

	// 流已交付，落库失败只记日志
	persistCtx := context.Background()
	toolCalls := controller.ToolCallRecords()
	if assistantText.Len() > 0 || len(toolCalls) > 0 {
		if err := chat.SaveAssistantMessage(persistCtx, session.ID, assistantText.String(), toolCalls); err != nil {
			slog.Error("Failed to save assistant message", "session_id", session.ID, "err", err)
		}
	}
	if err := dao.TouchSession(persistCtx, session.ID); err != nil {
		slog.Warn("Failed to touch session", "session_id", session.ID, "err", err)
	}

	usage.RecorderInstance.Record(&model.UsageLog{
		WorkspaceID:  tenantCtx.WorkspaceID,
		EventType:    model.UsageEventChatMessage,
		Provider:     agent.Provider,
		Model:        agent.Model,
		TokensInput:  chat.EstimateTokens(req.Message),
		TokensOutput: chat.EstimateTokens(assistantText.String()),
		IPAddress:    ip,
		UserAgent:    c.Request.UserAgent(),
		Origin:       origin,
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
