package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/rag"
	"github.com/Conversly/channel-relay/internal/types"
	"github.com/Conversly/channel-relay/internal/utils"
)

type Service struct {
	db        *loaders.PostgresClient
	retriever *rag.PgVectorRetriever
}

func NewService(db *loaders.PostgresClient, retriever *rag.PgVectorRetriever) *Service {
	return &Service{db: db, retriever: retriever}
}

// Sync upserts the pushed catalog items and records the integration
// sync run. Embeddings for changed rows are cleared by the upsert and
// picked up later by the background refresher; the sync itself never
// blocks on the embedding provider.
func (s *Service) Sync(ctx context.Context, req *SyncRequest) (int, error) {
	if _, err := s.db.GetBusinessByID(ctx, req.BusinessID); err != nil {
		return 0, err
	}

	items := make([]loaders.ProductUpsert, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate product id: %w", err)
		}
		items = append(items, loaders.ProductUpsert{
			ID:             id.String(),
			Name:           item.Name,
			Description:    item.Description,
			Price:          item.Price,
			SalePrice:      item.SalePrice,
			Category:       item.Category,
			ImageURL:       item.ImageURL,
			SKU:            item.SKU,
			ExternalID:     item.ExternalID,
			Stock:          item.Stock,
			SourcePlatform: req.Platform,
		})
	}

	count, err := s.db.UpsertProducts(ctx, req.BusinessID, items)
	if err != nil {
		return 0, err
	}

	// integration row is bookkeeping; the sync already landed
	if integrationID, err := uuid.NewV7(); err == nil {
		if err := s.db.UpsertIntegration(ctx, integrationID.String(), req.BusinessID, req.Platform, nil, count); err != nil {
			utils.Zlog.Warn("failed to record integration sync",
				zap.String("business_id", req.BusinessID),
				zap.String("platform", req.Platform),
				zap.Error(err))
		}
	}

	return count, nil
}

// Search runs a semantic similarity search over the business catalog.
func (s *Service) Search(ctx context.Context, businessID, query string, limit int) ([]types.ProductMatch, error) {
	return s.retriever.TopMatches(ctx, businessID, query, limit)
}

// Integration reports the last sync for a business + platform pair.
func (s *Service) Integration(ctx context.Context, businessID, platform string) (*types.Integration, error) {
	return s.db.GetIntegration(ctx, businessID, platform)
}
