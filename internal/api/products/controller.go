package products

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/utils"
)

const defaultSearchLimit = 5

type Controller struct {
	svc *Service
}

func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

func errorJSON(ctx *gin.Context, status int, code string, err error) {
	ctx.JSON(status, gin.H{
		"error":     code,
		"message":   err.Error(),
		"timestamp": time.Now().UTC(),
	})
}

// Sync handles POST /products/sync
func (c *Controller) Sync(ctx *gin.Context) {
	var req SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Warn("invalid /products/sync payload", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "bad_request", err)
		return
	}

	count, err := c.svc.Sync(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Error("product sync failed",
			zap.String("business_id", req.BusinessID),
			zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "sync_failed", err)
		return
	}

	utils.Zlog.Info("Product sync completed",
		zap.String("business_id", req.BusinessID),
		zap.String("platform", req.Platform),
		zap.Int("synced", count))

	ctx.JSON(http.StatusOK, SyncResponse{Synced: count, Success: true})
}

// Integration handles GET /products/integrations?businessId=...&platform=...
func (c *Controller) Integration(ctx *gin.Context) {
	businessID := ctx.Query("businessId")
	platform := ctx.Query("platform")
	if businessID == "" || platform == "" {
		errorJSON(ctx, http.StatusBadRequest, "bad_request",
			errors.New("businessId and platform query parameters are required"))
		return
	}

	integ, err := c.svc.Integration(ctx.Request.Context(), businessID, platform)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			errorJSON(ctx, http.StatusNotFound, "not_found",
				errors.New("no sync recorded for this platform"))
			return
		}
		utils.Zlog.Error("integration lookup failed",
			zap.String("business_id", businessID),
			zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "lookup_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, IntegrationResponse{
		ID:           integ.ID,
		BusinessID:   integ.BusinessID,
		Platform:     integ.Platform,
		Active:       integ.Active,
		LastSyncedAt: integ.LastSyncedAt,
		ProductCount: integ.ProductCount,
	})
}

// Search handles GET /products/search?businessId=...&q=...&limit=...
func (c *Controller) Search(ctx *gin.Context) {
	businessID := ctx.Query("businessId")
	query := ctx.Query("q")
	if businessID == "" || query == "" {
		errorJSON(ctx, http.StatusBadRequest, "bad_request",
			errors.New("businessId and q query parameters are required"))
		return
	}

	limit := defaultSearchLimit
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	matches, err := c.svc.Search(ctx.Request.Context(), businessID, query, limit)
	if err != nil {
		utils.Zlog.Error("product search failed",
			zap.String("business_id", businessID),
			zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "search_failed", err)
		return
	}

	results := make([]MatchResult, 0, len(matches))
	for i := range matches {
		results = append(results, toMatchResult(&matches[i]))
	}

	ctx.JSON(http.StatusOK, SearchResponse{Query: query, Results: results})
}
