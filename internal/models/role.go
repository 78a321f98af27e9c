package models

import (
	"time"

	"github.com/google/uuid"
)

// Role groups permissions within a tenant. Two tenants can each have
// a role with the same name.
type Role struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	Resources []Resource `json:"resources,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateRoleRequest struct {
	Name      string      `json:"name" binding:"required"`
	Active    *bool       `json:"active,omitempty"`
	Resources []uuid.UUID `json:"resources,omitempty"`
}

type UpdateRoleRequest struct {
	Name      *string      `json:"name,omitempty"`
	Active    *bool        `json:"active,omitempty"`
	Resources *[]uuid.UUID `json:"resources,omitempty"`
}

type RoleFilter struct {
	Name     string
	Active   *bool
	Page     int
	PageSize int
}

type RoleListResponse struct {
	Roles      []Role `json:"roles"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
