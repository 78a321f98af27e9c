package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolated company that owns all business data.
// One tenant is created per registration.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
