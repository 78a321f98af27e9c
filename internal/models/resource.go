package models

import "github.com/google/uuid"

// Resource is one (resource, action) pair of the static permission
// catalog. The catalog is seeded at deploy time and shared by all
// tenants; it is never edited through the API.
type Resource struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Action string    `json:"action"`
}
