package controller

import (
	"net/http"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/response"
	"vanta-agent-backend/service/tenant"

	"github.com/gin-gonic/gin"
)

// GetEmbed 嵌入脚本加载时拉取的公开 Agent 描述符。
// 走与聊天一致的租户校验，返回内容不含凭据与内部配置
func GetEmbed(c *gin.Context) {
	agentID := c.Query("agentId")
	if agentID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Error: "agentId is required",
		})
		return
	}

	tenantCtx := tenant.Resolve(c.Request.Context(), agentID, c.GetHeader("Origin"))
	if !tenantCtx.IsValid {
		status := http.StatusForbidden
		if tenantCtx.Error == tenant.ErrAgentNotFound {
			status = http.StatusNotFound
		}
		c.AbortWithStatusJSON(status, response.Response{Error: tenantCtx.Error})
		return
	}

	agent, err := dao.GetAgentWithTools(c.Request.Context(), agentID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Error: tenant.ErrAgentNotFound,
		})
		return
	}

	resp := response.EmbedResponse{
		AgentID: agent.ID,
		Name:    agent.Name,
		UIMode:  agent.UIMode,
		Theme:   agent.Theme,
		Tools:   []response.EmbedToolResponse{},
	}
	for _, t := range agent.Tools {
		resp.Tools = append(resp.Tools, response.EmbedToolResponse{
			Name:                 t.Name,
			Description:          t.Description,
			Type:                 t.Type,
			RequiresConfirmation: t.RequiresConfirmation,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Data:    resp,
	})
}
