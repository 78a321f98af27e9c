package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	// Image is the opaque storage reference; ImageURL carries the
	// resolved public URL in responses.
	Image     *string   `json:"-"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price" binding:"required,min=0"`
	Active      *bool     `json:"active,omitempty"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Price       *float64   `json:"price,omitempty" binding:"omitempty,min=0"`
	Active      *bool      `json:"active,omitempty"`
}

type ProductFilter struct {
	Name       string
	CategoryID *uuid.UUID
	Active     *bool
	Page       int
	PageSize   int
}

type ProductListResponse struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
