package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paulokalleby/api-vendas/internal/cache"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
)

const (
	resourceCacheKey = "catalog:resources"
	resourceCacheTTL = time.Hour
)

// ResourceHandler serves the permission catalog. The catalog only
// changes at deploy time, so it is cached in redis for an hour.
// The cache is best effort: a redis outage falls through to postgres.
type ResourceHandler struct {
	resources *repository.ResourceRepository
	cache     *cache.Client
	logger    *zap.Logger
}

func NewResourceHandler(resources *repository.ResourceRepository, cacheClient *cache.Client, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		cache:     cacheClient,
		logger:    logger,
	}
}

func (h *ResourceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []models.Resource
	err := h.cache.GetJSON(ctx, resourceCacheKey, &cached)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"resources": cached})
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.logger.Warn("resource catalog cache read failed", zap.Error(err))
	}

	resources, err := h.resources.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cache.SetJSON(ctx, resourceCacheKey, resources, resourceCacheTTL); err != nil {
		h.logger.Warn("resource catalog cache write failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}
