package messenger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/utils"
)

// RegisterRoutes registers the Messenger webhook endpoints
func RegisterRoutes(router *gin.Engine, orch *core.Orchestrator, cfg *config.Config) {
	adapter := NewAdapter()
	ctrl := NewController(adapter, orch, cfg)

	webhooks := router.Group("/webhooks")
	{
		webhooks.GET("/messenger", ctrl.VerifyWebhook)
		webhooks.POST("/messenger", ctrl.Webhook)
	}

	utils.Zlog.Info("Messenger routes registered",
		zap.String("endpoint", "/webhooks/messenger"))
}
