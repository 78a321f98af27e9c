package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

type CustomerStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
}

type PaymentStore interface {
	GetEnabledForTenant(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error)
}

type ProductStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, tenantID, userID, customerID, paymentID uuid.UUID, items []models.OrderItem) (*models.Order, error)
}

// OrderService creates orders. Everything referenced by the request
// is resolved inside the caller's tenant, and line prices are copied
// from the product at creation time so later price changes never
// touch existing orders.
type OrderService struct {
	orders    OrderStore
	customers CustomerStore
	payments  PaymentStore
	products  ProductStore
}

func NewOrderService(orders OrderStore, customers CustomerStore, payments PaymentStore, products ProductStore) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		payments:  payments,
		products:  products,
	}
}

// Create validates the request against the tenant's data and stores
// the order. A customer id that does not resolve inside the tenant is
// a not-found failure; bad payment or product references are
// validation failures. Ids in the body never reach another tenant's
// rows.
func (s *OrderService) Create(ctx context.Context, tenantID, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	customer, err := s.customers.GetByID(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, apperr.ErrNotFound
	}

	if _, err := s.payments.GetEnabledForTenant(ctx, tenantID, req.PaymentID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("payment method not found")
		}
		return nil, err
	}

	// Repeated product ids collapse into one line with the summed
	// quantity; an order holds at most one line per product.
	items := make([]models.OrderItem, 0, len(req.Products))
	lineIndex := make(map[uuid.UUID]int, len(req.Products))
	for _, line := range req.Products {
		if i, seen := lineIndex[line.ProductID]; seen {
			items[i].Quantity += line.Quantity
			continue
		}

		product, err := s.products.GetByID(ctx, tenantID, line.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("product not found")
			}
			return nil, err
		}
		if !product.Active {
			return nil, apperr.Validation("product not found")
		}

		lineIndex[line.ProductID] = len(items)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		})
	}

	return s.orders.Create(ctx, tenantID, userID, req.CustomerID, req.PaymentID, items)
}
