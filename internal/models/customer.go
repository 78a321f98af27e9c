package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Whatsapp  *string   `json:"whatsapp,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	Address  *string `json:"address,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	Address  *string `json:"address,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type CustomerFilter struct {
	Name     string
	Email    string
	Active   *bool
	Page     int
	PageSize int
}

type CustomerListResponse struct {
	Customers  []Customer `json:"customers"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}
