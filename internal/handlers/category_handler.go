package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
)

type CategoryHandler struct {
	categories *repository.CategoryRepository
}

func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	page, pageSize := parsePagination(c)
	filter := models.CategoryFilter{
		Name:     c.Query("name"),
		Active:   parseBoolQuery(c, "active"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.categories.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	category, err := h.categories.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	category, err := h.categories.Create(c.Request.Context(), session.TenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	category, err := h.categories.Update(c.Request.Context(), session.TenantID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	if err := h.categories.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
