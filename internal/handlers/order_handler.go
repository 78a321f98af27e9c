package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
	"github.com/paulokalleby/api-vendas/internal/services"
)

type OrderHandler struct {
	orders  *repository.OrderRepository
	service *services.OrderService
}

func NewOrderHandler(orders *repository.OrderRepository, service *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders, service: service}
}

func (h *OrderHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	page, pageSize := parsePagination(c)
	filter := models.OrderFilter{
		Identify:   parseIntQuery(c, "identify"),
		UserID:     parseUUIDQuery(c, "user_id"),
		CustomerID: parseUUIDQuery(c, "customer_id"),
		PaymentID:  parseUUIDQuery(c, "payment_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.orders.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	order, err := h.orders.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Create places an order for the authenticated user. Prices are
// snapshotted from the products at this moment.
func (h *OrderHandler) Create(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	order, err := h.service.Create(c.Request.Context(), session.TenantID, session.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// Update changes the order status. Items and totals are immutable
// after creation.
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		respondError(c, apperr.Validation("invalid order status"))
		return
	}

	session := middleware.SessionFrom(c)

	if err := h.orders.UpdateStatus(c.Request.Context(), session.TenantID, id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	if err := h.orders.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
