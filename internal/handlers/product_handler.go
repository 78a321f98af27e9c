package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
	"github.com/paulokalleby/api-vendas/internal/services"
)

// maxImageUpload bounds product image uploads to 10 MB.
const maxImageUpload = 10 << 20

type ProductHandler struct {
	products *repository.ProductRepository
	images   *services.ImageService
}

func NewProductHandler(products *repository.ProductRepository, images *services.ImageService) *ProductHandler {
	return &ProductHandler{products: products, images: images}
}

func (h *ProductHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	page, pageSize := parsePagination(c)
	filter := models.ProductFilter{
		Name:       c.Query("name"),
		CategoryID: parseUUIDQuery(c, "category_id"),
		Active:     parseBoolQuery(c, "active"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.products.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	h.images.ResolveAll(result.Products)
	c.JSON(http.StatusOK, result)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	product, err := h.products.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.images.Resolve(product)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	product, err := h.products.Create(c.Request.Context(), session.TenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)

	product, err := h.products.Update(c.Request.Context(), session.TenantID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.images.Resolve(product)
	c.JSON(http.StatusOK, product)
}

// UploadImage accepts a multipart "image" file, normalizes it and
// binds it to the product.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxImageUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	session := middleware.SessionFrom(c)

	product, err := h.images.Attach(c.Request.Context(), session.TenantID, id, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	session := middleware.SessionFrom(c)

	if err := h.products.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
