package whatsapp

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/utils"
)

// RegisterRoutes registers the WhatsApp webhook endpoints
func RegisterRoutes(router *gin.Engine, orch *core.Orchestrator, cfg *config.Config) {
	adapter := NewAdapter()
	ctrl := NewController(adapter, orch, cfg)

	webhooks := router.Group("/webhooks")
	{
		// Meta sends GET for verification, POST for messages
		webhooks.GET("/whatsapp", ctrl.VerifyWebhook)
		webhooks.POST("/whatsapp", ctrl.Webhook)
	}

	utils.Zlog.Info("WhatsApp routes registered",
		zap.String("endpoint", "/webhooks/whatsapp"))
}
