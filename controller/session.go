package controller

import (
	"log/slog"
	"net/http"

	"vanta-agent-backend/dao"
	"vanta-agent-backend/response"

	"github.com/gin-gonic/gin"
)

// GetSessionMessages 返回按时间正序的完整会话记录，供嵌入端刷新后重建界面
func GetSessionMessages(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := dao.GetSessionByID(c.Request.Context(), sessionID); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Error: "Session not found",
		})
		return
	}

	messages, err := dao.GetMessagesBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		slog.Error(ErrGetSessionMessages.Error(), "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Error: ErrGetSessionMessages.Error(),
		})
		return
	}

	resp := response.GetSessionMessagesResponse{SessionID: sessionID}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, response.MessageResponse{
			CreatedAt:  m.CreatedAt,
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Data:    resp,
	})
}
