package controller

import (
	"net/http"

	"vanta-agent-backend/response"
	"vanta-agent-backend/service/provider"

	"github.com/gin-gonic/gin"
)

// GetProviders 供应商与可用模型目录，供控制台下拉选择
func GetProviders(c *gin.Context) {
	providers := make(map[string][]string)
	for _, ptype := range provider.ProviderTypes() {
		providers[ptype] = provider.AvailableModels(ptype)
	}

	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Data:    response.ProvidersResponse{Providers: providers},
	})
}
