package products

import (
	"github.com/gin-gonic/gin"

	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/rag"
)

func RegisterRoutes(router *gin.Engine, db *loaders.PostgresClient, retriever *rag.PgVectorRetriever, _ *config.Config) {
	svc := NewService(db, retriever)
	ctrl := NewController(svc)

	group := router.Group("/products")
	{
		group.POST("/sync", ctrl.Sync)
		group.GET("/search", ctrl.Search)
		group.GET("/integrations", ctrl.Integration)
	}
}
