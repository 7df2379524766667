package products

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Conversly/channel-relay/internal/embedder"
	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/types"
	"github.com/Conversly/channel-relay/internal/utils"
)

const (
	refresherInterval  = 30 * time.Second
	refresherBatchSize = 64
	// embedding provider budget, requests per second
	refresherRateLimit = 5
)

// Refresher re-embeds products whose vectors were cleared by a catalog
// sync. It runs as a single background loop, rate-limited against the
// embedding provider.
type Refresher struct {
	db       *loaders.PostgresClient
	embedder *embedder.GeminiEmbedder
	limiter  *rate.Limiter

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewRefresher(db *loaders.PostgresClient, emb *embedder.GeminiEmbedder) *Refresher {
	return &Refresher{
		db:       db,
		embedder: emb,
		limiter:  rate.NewLimiter(rate.Limit(refresherRateLimit), refresherRateLimit),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the refresh loop.
func (r *Refresher) Start() {
	go r.run()
	utils.Zlog.Info("Product embedding refresher started",
		zap.Duration("interval", refresherInterval),
		zap.Int("batch_size", refresherBatchSize))
}

// Stop signals the loop and waits for the in-flight batch to finish.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

func (r *Refresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(refresherInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refreshBatch()
		}
	}
}

func (r *Refresher) refreshBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), refresherInterval)
	defer cancel()

	pending, err := r.db.ListProductsMissingEmbedding(ctx, refresherBatchSize)
	if err != nil {
		utils.Zlog.Error("Failed to list unembedded products", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	embedded := 0
	for i := range pending {
		select {
		case <-r.stopCh:
			return
		default:
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return
		}

		if err := r.embedOne(ctx, &pending[i]); err != nil {
			utils.Zlog.Warn("Failed to refresh product embedding",
				zap.String("product_id", pending[i].ID),
				zap.Error(err))
			continue
		}
		embedded++
	}

	utils.Zlog.Info("Refreshed product embeddings",
		zap.Int("pending", len(pending)),
		zap.Int("embedded", embedded))
}

func (r *Refresher) embedOne(ctx context.Context, p *types.Product) error {
	vector, err := r.embedder.EmbedText(ctx, EmbeddingText(p))
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}
	return r.db.SetProductEmbedding(ctx, p.ID, vector, r.embedder.Model())
}

// EmbeddingText builds the text a product vector is computed from. The
// sync upsert clears embeddings exactly when one of these fields
// changes, so the two must stay in lockstep.
func EmbeddingText(p *types.Product) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if p.Category != "" {
		sb.WriteString("\nCategory: ")
		sb.WriteString(p.Category)
	}
	if p.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Description)
	}
	return sb.String()
}
