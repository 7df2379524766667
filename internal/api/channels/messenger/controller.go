package messenger

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/api/channels/meta"
	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/utils"
)

// Controller handles Messenger webhook requests.
type Controller struct {
	adapter *Adapter
	orch    *core.Orchestrator
	cfg     *config.Config
}

func NewController(adapter *Adapter, orch *core.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		adapter: adapter,
		orch:    orch,
		cfg:     cfg,
	}
}

// VerifyWebhook handles Meta's subscription handshake.
// GET /webhooks/messenger
func (c *Controller) VerifyWebhook(ctx *gin.Context) {
	challenge, err := meta.VerifyHandshake(
		ctx.Query("hub.mode"),
		ctx.Query("hub.verify_token"),
		ctx.Query("hub.challenge"),
		c.cfg.MetaVerifyToken,
	)
	if err != nil {
		utils.Zlog.Warn("Messenger webhook verification failed",
			zap.String("mode", ctx.Query("hub.mode")))
		ctx.JSON(http.StatusForbidden, gin.H{
			"error": "verification_failed",
		})
		return
	}

	ctx.String(http.StatusOK, challenge)
}

// Webhook handles incoming Messenger webhook deliveries.
// POST /webhooks/messenger
func (c *Controller) Webhook(ctx *gin.Context) {
	payload, err := ctx.GetRawData()
	if err != nil {
		utils.Zlog.Error("Failed to read Messenger webhook body", zap.Error(err))
		ctx.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	// a missing header must fail too, otherwise signing is optional
	if c.cfg.MetaAppSecret != "" {
		if err := meta.VerifySignature(ctx.GetHeader("X-Hub-Signature-256"), payload, c.cfg.MetaAppSecret); err != nil {
			utils.Zlog.Warn("Messenger webhook signature mismatch", zap.Error(err))
			ctx.JSON(http.StatusForbidden, gin.H{"error": "invalid_signature"})
			return
		}
	}

	events := c.adapter.ParseInbound(payload)

	ctx.JSON(http.StatusOK, gin.H{"status": "received"})

	if len(events) == 0 {
		return
	}

	utils.Zlog.Info("Received Messenger events", zap.Int("count", len(events)))

	go func(events []core.NormalizedEvent) {
		processCtx := context.Background()
		for _, ev := range events {
			if err := c.orch.HandleEvent(processCtx, c.adapter, ev); err != nil {
				utils.Zlog.Error("Failed to process Messenger event",
					zap.String("routing_key", ev.RoutingKey),
					zap.String("sender", ev.SenderAddress),
					zap.Error(err))
			}
		}
	}(events)
}
