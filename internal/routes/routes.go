package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Conversly/channel-relay/internal/ai"
	"github.com/Conversly/channel-relay/internal/api/business"
	"github.com/Conversly/channel-relay/internal/api/channels/instagram"
	"github.com/Conversly/channel-relay/internal/api/channels/messenger"
	"github.com/Conversly/channel-relay/internal/api/channels/whatsapp"
	"github.com/Conversly/channel-relay/internal/api/conversations"
	"github.com/Conversly/channel-relay/internal/api/products"
	"github.com/Conversly/channel-relay/internal/config"
	"github.com/Conversly/channel-relay/internal/core"
	"github.com/Conversly/channel-relay/internal/embedder"
	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/middleware"
	"github.com/Conversly/channel-relay/internal/rag"
)

// SetupRoutes configures all application routes and wires the reply
// pipeline. The returned refresher is already started; the caller owns
// stopping it on shutdown.
func SetupRoutes(router *gin.Engine, db *loaders.PostgresClient, cfg *config.Config) (*products.Refresher, error) {
	// Apply global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())

	emb, err := embedder.NewGeminiEmbedder(cfg.GeminiAPIKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	retriever := rag.NewPgVectorRetriever(db, emb)

	generator, err := ai.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKeys, cfg.GenerationModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply generator: %w", err)
	}

	orch := core.NewOrchestrator(
		core.NewPgResolver(db),
		core.NewPgConversationStore(db),
		generator,
		cfg.HistoryLimit,
	).
		WithProductRetriever(retriever).
		WithUsageRecorder(core.NewPgUsageRecorder(db))

	// Setup route groups
	SetupHealthRoutes(router, db)
	whatsapp.RegisterRoutes(router, orch, cfg)
	messenger.RegisterRoutes(router, orch, cfg)
	instagram.RegisterRoutes(router, orch, cfg)
	business.RegisterRoutes(router, db, cfg)
	conversations.RegisterRoutes(router, db, cfg)
	products.RegisterRoutes(router, db, retriever, cfg)
	Setup404Handler(router)

	refresher := products.NewRefresher(db, emb)
	refresher.Start()

	return refresher, nil
}
