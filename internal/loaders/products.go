package loaders

import (
	"context"
	"fmt"
	"log"

	"github.com/pgvector/pgvector-go"

	"github.com/Conversly/channel-relay/internal/types"
)

// ProductUpsert is one catalog item pushed by a sync run.
type ProductUpsert struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	SalePrice      *float64
	Category       string
	ImageURL       string
	SKU            string
	ExternalID     string
	Stock          int
	SourcePlatform string
}

// UpsertProducts writes synced catalog rows. When the textual fields a
// product embedding was computed from change, the embedding is cleared
// in the same statement so stale vectors never participate in
// similarity search. Returns the number of rows written.
func (c *PostgresClient) UpsertProducts(ctx context.Context, businessID string, items []ProductUpsert) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (
			id, business_id, name, description, price, sale_price,
			category, image_url, sku, external_id, stock, source_platform,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (business_id, source_platform, external_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			sale_price = EXCLUDED.sale_price,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			sku = EXCLUDED.sku,
			stock = EXCLUDED.stock,
			updated_at = NOW(),
			embedding = CASE
				WHEN products.name IS DISTINCT FROM EXCLUDED.name
				  OR products.description IS DISTINCT FROM EXCLUDED.description
				  OR products.category IS DISTINCT FROM EXCLUDED.category
				THEN NULL ELSE products.embedding END,
			embedding_model = CASE
				WHEN products.name IS DISTINCT FROM EXCLUDED.name
				  OR products.description IS DISTINCT FROM EXCLUDED.description
				  OR products.category IS DISTINCT FROM EXCLUDED.category
				THEN NULL ELSE products.embedding_model END,
			embedded_at = CASE
				WHEN products.name IS DISTINCT FROM EXCLUDED.name
				  OR products.description IS DISTINCT FROM EXCLUDED.description
				  OR products.category IS DISTINCT FROM EXCLUDED.category
				THEN NULL ELSE products.embedded_at END
	`

	successCount := 0
	for _, item := range items {
		_, err := c.pool.Exec(ctx, query,
			item.ID, businessID, item.Name, item.Description, item.Price, item.SalePrice,
			item.Category, item.ImageURL, item.SKU, item.ExternalID, item.Stock, item.SourcePlatform,
		)
		if err != nil {
			log.Printf("Failed to upsert product external_id=%s: %v", item.ExternalID, err)
			continue
		}
		successCount++
	}

	if successCount == 0 {
		return 0, fmt.Errorf("failed to upsert any products")
	}

	return successCount, nil
}

// SearchProductsByVector runs a cosine-distance similarity search over
// the business's embedded products. Rows with a NULL embedding are
// excluded until the refresher re-embeds them.
func (c *PostgresClient) SearchProductsByVector(ctx context.Context, businessID string, queryVector []float64, topK int) ([]types.ProductMatch, error) {
	vec32 := make([]float32, len(queryVector))
	for i, v := range queryVector {
		vec32[i] = float32(v)
	}
	vec := pgvector.NewVector(vec32)

	// <=> is cosine distance
	query := `
        SELECT id, business_id, name, description, price, sale_price,
               category, image_url, sku, external_id, stock, source_platform,
               embedding <=> $2 AS distance
        FROM products
        WHERE business_id = $1 AND embedding IS NOT NULL AND stock > 0
        ORDER BY embedding <=> $2
        LIMIT $3
    `

	rows, err := c.pool.Query(ctx, query, businessID, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var results []types.ProductMatch
	for rows.Next() {
		var m types.ProductMatch
		if err := rows.Scan(
			&m.ID, &m.BusinessID, &m.Name, &m.Description, &m.Price, &m.SalePrice,
			&m.Category, &m.ImageURL, &m.SKU, &m.ExternalID, &m.Stock, &m.SourcePlatform,
			&m.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return results, nil
}

// ListProductsMissingEmbedding returns products whose embedding was
// cleared by a sync (or never computed), oldest update first.
func (c *PostgresClient) ListProductsMissingEmbedding(ctx context.Context, limit int) ([]types.Product, error) {
	query := `
		SELECT id, business_id, name, description, category
		FROM products
		WHERE embedding IS NULL
		ORDER BY updated_at
		LIMIT $1
	`

	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unembedded products: %w", err)
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		var p types.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Description, &p.Category); err != nil {
			log.Printf("Failed to scan unembedded product row: %v", err)
			continue
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unembedded products: %w", err)
	}

	return products, nil
}

// SetProductEmbedding stores a freshly computed embedding for a product.
func (c *PostgresClient) SetProductEmbedding(ctx context.Context, productID string, vector []float64, model string) error {
	vec32 := make([]float32, len(vector))
	for i, v := range vector {
		vec32[i] = float32(v)
	}
	vec := pgvector.NewVector(vec32)

	_, err := c.pool.Exec(ctx, `
		UPDATE products
		SET embedding = $2, embedding_model = $3, embedded_at = NOW()
		WHERE id = $1`,
		productID, vec, model)
	if err != nil {
		return fmt.Errorf("failed to set product embedding: %w", err)
	}
	return nil
}

// UpsertIntegration records a sync run for a (business, platform)
// pair. One row per pair; repeat syncs update it in place.
func (c *PostgresClient) UpsertIntegration(ctx context.Context, id, businessID, platform string, credentials []byte, productCount int) error {
	query := `
		INSERT INTO integrations (id, business_id, platform, credentials, active, last_synced_at, product_count)
		VALUES ($1, $2, $3, $4, true, NOW(), $5)
		ON CONFLICT (business_id, platform)
		DO UPDATE SET
			credentials = COALESCE(EXCLUDED.credentials, integrations.credentials),
			active = true,
			last_synced_at = NOW(),
			product_count = EXCLUDED.product_count
	`

	_, err := c.pool.Exec(ctx, query, id, businessID, platform, credentials, productCount)
	if err != nil {
		return fmt.Errorf("failed to upsert integration: %w", err)
	}
	return nil
}

// GetIntegration fetches the integration row for a business + platform.
func (c *PostgresClient) GetIntegration(ctx context.Context, businessID, platform string) (*types.Integration, error) {
	var integ types.Integration
	err := c.pool.QueryRow(ctx, `
		SELECT id, business_id, platform, active, last_synced_at, product_count
		FROM integrations
		WHERE business_id = $1 AND platform = $2`,
		businessID, platform).Scan(
		&integ.ID, &integ.BusinessID, &integ.Platform, &integ.Active, &integ.LastSyncedAt, &integ.ProductCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &integ, nil
}
