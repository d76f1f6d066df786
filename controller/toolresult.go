package controller

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/model"
	"vanta-agent-backend/request"
	"vanta-agent-backend/response"
	"vanta-agent-backend/security"

	"github.com/gin-gonic/gin"
)

// ReportToolResult 客户端委托工具的执行结果回报。
// 凭桥接令牌定位执行记录，只允许对 RUNNING 记录收尾一次
func ReportToolResult(c *gin.Context) {
	var req request.ToolResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Error: ErrParseRequest.Error(),
		})
		return
	}

	claims, err := security.ParseBridgeToken(req.Token)
	if err != nil {
		slog.Info(ErrInvalidBridgeToken.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
			Error: ErrInvalidBridgeToken.Error(),
		})
		return
	}

	execution, err := dao.GetToolExecutionByID(c.Request.Context(), claims.ExecutionID)
	if err != nil || execution.SessionID != claims.SessionID {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Error: ErrExecutionNotFound.Error(),
		})
		return
	}
	if execution.Status != model.ToolExecutionStatusRunning {
		c.AbortWithStatusJSON(http.StatusConflict, response.Response{
			Error: ErrExecutionFinalized.Error(),
		})
		return
	}

	var output json.RawMessage
	if req.Output != nil {
		if raw, err := json.Marshal(req.Output); err == nil {
			output = raw
		}
	}

	if err := dao.FinalizeToolExecution(c.Request.Context(), execution.ID, output, req.Error, req.Success, 0); err != nil {
		slog.Error("Failed to finalize tool execution", "execution_id", execution.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrExecutionFinalized.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{Success: true})
}
