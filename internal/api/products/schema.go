package products

import (
	"time"

	"github.com/Conversly/channel-relay/internal/types"
)

// SyncRequest is a full or partial catalog push from a source platform.
type SyncRequest struct {
	BusinessID string     `json:"businessId" binding:"required"`
	Platform   string     `json:"platform" binding:"required"` // shopify | woocommerce | square | manual
	Items      []SyncItem `json:"items" binding:"required,min=1,dive"`
}

// SyncItem is one catalog product in a sync push. ExternalID keys the
// upsert within (business, platform).
type SyncItem struct {
	ExternalID  string   `json:"externalId" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice,omitempty"`
	Category    string   `json:"category,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Stock       int      `json:"stock"`
}

// SyncResponse acknowledges a sync run.
type SyncResponse struct {
	Synced  int  `json:"synced"`
	Success bool `json:"success"`
}

// IntegrationResponse reports sync status for a business + platform.
type IntegrationResponse struct {
	ID           string     `json:"id"`
	BusinessID   string     `json:"businessId"`
	Platform     string     `json:"platform"`
	Active       bool       `json:"active"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	ProductCount int        `json:"productCount"`
}

// SearchResponse carries ranked product matches for a query.
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []MatchResult `json:"results"`
}

// MatchResult is one product hit with its cosine distance.
type MatchResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice,omitempty"`
	Category    string   `json:"category,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Stock       int      `json:"stock"`
	Distance    float64  `json:"distance"`
}

func toMatchResult(m *types.ProductMatch) MatchResult {
	return MatchResult{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		SalePrice:   m.SalePrice,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		SKU:         m.SKU,
		Stock:       m.Stock,
		Distance:    m.Distance,
	}
}
