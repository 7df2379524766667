package rag

import (
	"context"
	"fmt"

	"github.com/Conversly/channel-relay/internal/embedder"
	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
)

// PgVectorRetriever finds catalog products semantically close to a
// customer message, using the pgvector cosine-distance operator.
type PgVectorRetriever struct {
	db       *loaders.PostgresClient
	embedder *embedder.GeminiEmbedder
}

func NewPgVectorRetriever(db *loaders.PostgresClient, emb *embedder.GeminiEmbedder) *PgVectorRetriever {
	return &PgVectorRetriever{
		db:       db,
		embedder: emb,
	}
}

func (r *PgVectorRetriever) TopMatches(ctx context.Context, businessID, query string, limit int) ([]types.ProductMatch, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := r.db.SearchProductsByVector(ctx, businessID, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	return matches, nil
}
