package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
)

type CustomerHandler struct {
	customers *repository.CustomerRepository
}

func NewCustomerHandler(customers *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	page, pageSize := parsePagination(c)
	filter := models.CustomerFilter{
		Name:     c.Query("name"),
		Email:    c.Query("email"),
		Active:   parseBoolQuery(c, "active"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.customers.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	customer, err := h.customers.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	customer, err := h.customers.Create(c.Request.Context(), session.TenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	customer, err := h.customers.Update(c.Request.Context(), session.TenantID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	if err := h.customers.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
