package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paulokalleby/api-vendas/internal/cache"
	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
)

const (
	paymentCacheKeyPrefix = "catalog:payments:"
	paymentCacheTTL       = time.Hour
)

// PaymentHandler lists the payment methods the tenant accepts. The
// list is cached in redis per tenant; a redis outage falls through to
// postgres.
type PaymentHandler struct {
	payments *repository.PaymentRepository
	cache    *cache.Client
	logger   *zap.Logger
}

func NewPaymentHandler(payments *repository.PaymentRepository, cacheClient *cache.Client, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		cache:    cacheClient,
		logger:   logger,
	}
}

func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.SessionFrom(c)
	key := paymentCacheKeyPrefix + session.TenantID.String()

	var cached []models.Payment
	err := h.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"payments": cached})
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.logger.Warn("payment catalog cache read failed", zap.Error(err))
	}

	payments, err := h.payments.ListForTenant(ctx, session.TenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cache.SetJSON(ctx, key, payments, paymentCacheTTL); err != nil {
		h.logger.Warn("payment catalog cache write failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
