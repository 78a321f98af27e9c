package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "Open"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// ValidOrderStatus reports whether s is one of the known statuses.
// Transitions between statuses are unrestricted.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusOpen, OrderStatusPaid, OrderStatusCancelled, OrderStatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID         uuid.UUID   `json:"id"`
	TenantID   uuid.UUID   `json:"tenant_id"`
	UserID     uuid.UUID   `json:"user_id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	PaymentID  uuid.UUID   `json:"payment_id"`
	// Identify is the tenant-local sequential order number shown to
	// end users; it is not globally unique.
	Identify  int         `json:"identify"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items,omitempty"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order. Price is the product price
// snapshotted at creation and never changes afterwards.
type OrderItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
}

// ItemsTotal sums quantity times snapshotted price over all lines.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	PaymentID  uuid.UUID          `json:"payment_id" binding:"required"`
	Products   []OrderLineRequest `json:"products" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type OrderFilter struct {
	Identify   *int
	UserID     *uuid.UUID
	CustomerID *uuid.UUID
	PaymentID  *uuid.UUID
	Page       int
	PageSize   int
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}
