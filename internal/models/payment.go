package models

import "github.com/google/uuid"

// Payment is a payment method from the global catalog. Tenants opt in
// to the methods they accept through the tenant_payment join table.
type Payment struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
}
