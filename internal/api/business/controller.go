package business

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Conversly/channel-relay/internal/loaders"
	"github.com/Conversly/channel-relay/internal/utils"
)

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

// Create handles POST /businesses
func (c *Controller) Create(ctx *gin.Context) {
	var req CreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Warn("invalid /businesses payload", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "bad_request", err)
		return
	}

	b, err := c.svc.Create(ctx.Request.Context(), &req)
	if err != nil {
		utils.Zlog.Warn("business create failed", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "create_failed", err)
		return
	}

	ctx.JSON(http.StatusCreated, toResponse(b))
}

// Get handles GET /businesses/:id
func (c *Controller) Get(ctx *gin.Context) {
	b, err := c.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Error("business lookup failed", zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "lookup_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, toResponse(b))
}

// List handles GET /businesses?accountId=...
func (c *Controller) List(ctx *gin.Context) {
	accountID := ctx.Query("accountId")
	if accountID == "" {
		errorJSON(ctx, http.StatusBadRequest, "bad_request", errors.New("accountId query parameter is required"))
		return
	}

	businesses, err := c.svc.List(ctx.Request.Context(), accountID)
	if err != nil {
		utils.Zlog.Error("business list failed", zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "list_failed", err)
		return
	}

	out := make([]Response, 0, len(businesses))
	for i := range businesses {
		out = append(out, toResponse(&businesses[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"businesses": out})
}

// Update handles PUT /businesses/:id
func (c *Controller) Update(ctx *gin.Context) {
	var req UpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Warn("invalid business update payload", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "bad_request", err)
		return
	}

	b, err := c.svc.Update(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Warn("business update failed", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "update_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, toResponse(b))
}

// Delete handles DELETE /businesses/:id
func (c *Controller) Delete(ctx *gin.Context) {
	if err := c.svc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Error("business delete failed", zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "delete_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPolicies handles GET /businesses/:id/policies
func (c *Controller) GetPolicies(ctx *gin.Context) {
	p, err := c.svc.GetPolicies(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Error("policies lookup failed", zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "lookup_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, PoliciesRequest{
		Refund:   p.Refund,
		Return:   p.Return,
		Shipping: p.Shipping,
		Privacy:  p.Privacy,
		Terms:    p.Terms,
	})
}

// UpdatePolicies handles PUT /businesses/:id/policies
func (c *Controller) UpdatePolicies(ctx *gin.Context) {
	var req PoliciesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Warn("invalid policies payload", zap.Error(err))
		errorJSON(ctx, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := c.svc.UpdatePolicies(ctx.Request.Context(), ctx.Param("id"), &req); err != nil {
		if errors.Is(err, loaders.ErrBusinessNotFound) {
			errorJSON(ctx, http.StatusNotFound, "not_found", err)
			return
		}
		utils.Zlog.Warn("policies update failed", zap.Error(err))
		errorJSON(ctx, http.StatusInternalServerError, "update_failed", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
