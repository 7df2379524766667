package instagram

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/utils"
)

// RegisterRoutes registers the Instagram webhook endpoints
func RegisterRoutes(router *gin.Engine, orch *core.Orchestrator, cfg *config.Config) {
	adapter := NewAdapter()
	ctrl := NewController(adapter, orch, cfg)

	webhooks := router.Group("/webhooks")
	{
		webhooks.GET("/instagram", ctrl.VerifyWebhook)
		webhooks.POST("/instagram", ctrl.Webhook)
	}

	utils.Zlog.Info("Instagram routes registered",
		zap.String("endpoint", "/webhooks/instagram"))
}
