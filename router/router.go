package router

import (
	"net/http"

	"vanta-agent-backend/controller"
	"vanta-agent-backend/middleware"

	"github.com/gin-gonic/gin"
)

func Register() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.POST("/chat", controller.AgentChat)
		api.POST("/chat/tool-result", controller.ReportToolResult)

		api.GET("/embed", controller.GetEmbed)
		api.GET("/session/:id/messages", controller.GetSessionMessages)
		api.GET("/providers", controller.GetProviders)
	}

	return r
}
