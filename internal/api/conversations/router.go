package conversations

import (
	"github.com/gin-gonic/gin"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/loaders"
)

func RegisterRoutes(router *gin.Engine, db *loaders.PostgresClient, _ *config.Config) {
	svc := NewService(db)
	ctrl := NewController(svc)

	router.PUT("/conversations/:id/mode", ctrl.SetMode)
}
