package business

import (
	"github.com/gin-gonic/gin"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/loaders"
)

func RegisterRoutes(router *gin.Engine, db *loaders.PostgresClient, _ *config.Config) {
	svc := NewService(db)
	ctrl := NewController(svc)

	group := router.Group("/businesses")
	{
		group.POST("", ctrl.Create)
		group.GET("", ctrl.List)
		group.GET("/:id", ctrl.Get)
		group.PUT("/:id", ctrl.Update)
		group.DELETE("/:id", ctrl.Delete)
		group.GET("/:id/policies", ctrl.GetPolicies)
		group.PUT("/:id/policies", ctrl.UpdatePolicies)
	}
}
