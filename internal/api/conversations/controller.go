package conversations

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/utils"
)

type Controller struct {
	svc *Service
}

func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

// SetMode handles PUT /conversations/:id/mode
func (c *Controller) SetMode(ctx *gin.Context) {
	var req ModeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Warn("invalid conversation mode payload", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":     "bad_request",
			"message":   err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}

	id := ctx.Param("id")
	if err := c.svc.SetMode(ctx.Request.Context(), id, &req); err != nil {
		status := http.StatusInternalServerError
		code := "update_failed"
		if strings.HasPrefix(err.Error(), "invalid mode") {
			status = http.StatusBadRequest
			code = "bad_request"
		}
		utils.Zlog.Warn("conversation mode update failed",
			zap.String("conversation_id", id),
			zap.Error(err))
		ctx.JSON(status, gin.H{
			"error":     code,
			"message":   err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}

	utils.Zlog.Info("Conversation mode changed",
		zap.String("conversation_id", id),
		zap.String("mode", req.Mode))

	ctx.JSON(http.StatusOK, ModeResponse{
		ConversationID: id,
		Mode:           req.Mode,
		Success:        true,
	})
}
