package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

type fakeCustomerStore struct {
	customers map[uuid.UUID]*models.Customer
}

func (s *fakeCustomerStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

type fakePaymentStore struct {
	enabled map[uuid.UUID]bool
}

func (s *fakePaymentStore) GetEnabledForTenant(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	if !s.enabled[paymentID] {
		return nil, apperr.ErrNotFound
	}
	return &models.Payment{ID: paymentID, Name: "Cash", Active: true}, nil
}

type fakeProductStore struct {
	products map[uuid.UUID]*models.Product
}

func (s *fakeProductStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

type fakeOrderStore struct {
	mu      sync.Mutex
	created []models.Order
}

func (s *fakeOrderStore) Create(ctx context.Context, tenantID, userID, customerID, paymentID uuid.UUID, items []models.OrderItem) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := models.Order{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		CustomerID: customerID,
		PaymentID:  paymentID,
		Identify:   len(s.created) + 1,
		Status:     models.OrderStatusOpen,
		Items:      items,
		Total:      models.ItemsTotal(items),
	}
	s.created = append(s.created, order)
	return &order, nil
}

type orderFixture struct {
	service  *OrderService
	orders   *fakeOrderStore
	products *fakeProductStore

	tenantID  uuid.UUID
	userID    uuid.UUID
	customer  *models.Customer
	paymentID uuid.UUID
	productA  *models.Product
	productB  *models.Product
}

func newOrderFixture() *orderFixture {
	tenantID := uuid.New()

	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Name: "Alice", Active: true}
	productA := &models.Product{ID: uuid.New(), TenantID: tenantID, Name: "Espresso", Price: 4.5, Active: true}
	productB := &models.Product{ID: uuid.New(), TenantID: tenantID, Name: "Croissant", Price: 7.0, Active: true}
	paymentID := uuid.New()

	orders := &fakeOrderStore{}
	products := &fakeProductStore{products: map[uuid.UUID]*models.Product{
		productA.ID: productA,
		productB.ID: productB,
	}}

	service := NewOrderService(
		orders,
		&fakeCustomerStore{customers: map[uuid.UUID]*models.Customer{customer.ID: customer}},
		&fakePaymentStore{enabled: map[uuid.UUID]bool{paymentID: true}},
		products,
	)

	return &orderFixture{
		service:   service,
		orders:    orders,
		products:  products,
		tenantID:  tenantID,
		userID:    uuid.New(),
		customer:  customer,
		paymentID: paymentID,
		productA:  productA,
		productB:  productB,
	}
}

func TestOrderCreateSnapshotsPrices(t *testing.T) {
	f := newOrderFixture()

	order, err := f.service.Create(context.Background(), f.tenantID, f.userID, &models.CreateOrderRequest{
		CustomerID: f.customer.ID,
		PaymentID:  f.paymentID,
		Products: []models.OrderLineRequest{
			{ProductID: f.productA.ID, Quantity: 2},
			{ProductID: f.productB.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if order.Status != models.OrderStatusOpen {
		t.Errorf("status = %q, want %q", order.Status, models.OrderStatusOpen)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}

	wantTotal := 2*4.5 + 1*7.0
	if order.Total != wantTotal {
		t.Errorf("total = %v, want %v", order.Total, wantTotal)
	}

	// Raising the catalog price must not change the stored lines.
	f.productA.Price = 99.0
	if order.Items[0].Price != 4.5 {
		t.Errorf("line price followed the catalog: got %v, want 4.5", order.Items[0].Price)
	}
	if models.ItemsTotal(order.Items) != wantTotal {
		t.Errorf("total after price change = %v, want %v", models.ItemsTotal(order.Items), wantTotal)
	}
}

func TestOrderCreateMergesDuplicateLines(t *testing.T) {
	f := newOrderFixture()

	order, err := f.service.Create(context.Background(), f.tenantID, f.userID, &models.CreateOrderRequest{
		CustomerID: f.customer.ID,
		PaymentID:  f.paymentID,
		Products: []models.OrderLineRequest{
			{ProductID: f.productA.ID, Quantity: 2},
			{ProductID: f.productA.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if len(order.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(order.Items))
	}
	if order.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", order.Items[0].Quantity)
	}
	if order.Total != 5*4.5 {
		t.Errorf("total = %v, want %v", order.Total, 5*4.5)
	}
}

func TestOrderCreateRejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *orderFixture, req *models.CreateOrderRequest)
		wantKind apperr.Kind
	}{
		{
			"unknown customer",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				req.CustomerID = uuid.New()
			},
			apperr.KindNotFound,
		},
		{
			"inactive customer",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				f.customer.Active = false
			},
			apperr.KindNotFound,
		},
		{
			"customer from another tenant",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				f.customer.TenantID = uuid.New()
			},
			apperr.KindNotFound,
		},
		{
			"payment not enabled",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				req.PaymentID = uuid.New()
			},
			apperr.KindValidation,
		},
		{
			"unknown product",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				req.Products[0].ProductID = uuid.New()
			},
			apperr.KindValidation,
		},
		{
			"inactive product",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				f.productA.Active = false
			},
			apperr.KindValidation,
		},
		{
			"product from another tenant",
			func(f *orderFixture, req *models.CreateOrderRequest) {
				f.productA.TenantID = uuid.New()
			},
			apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			req := &models.CreateOrderRequest{
				CustomerID: f.customer.ID,
				PaymentID:  f.paymentID,
				Products:   []models.OrderLineRequest{{ProductID: f.productA.ID, Quantity: 1}},
			}
			tt.mutate(f, req)

			_, err := f.service.Create(context.Background(), f.tenantID, f.userID, req)
			if err == nil {
				t.Fatal("Create() succeeded, want an error")
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v", apperr.KindOf(err), tt.wantKind)
			}
			if len(f.orders.created) != 0 {
				t.Error("order was stored despite the failure")
			}
		})
	}
}

func TestOrderCreateConcurrentIdentifies(t *testing.T) {
	f := newOrderFixture()

	const n = 50
	var wg sync.WaitGroup
	identifies := make([]int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := f.service.Create(context.Background(), f.tenantID, f.userID, &models.CreateOrderRequest{
				CustomerID: f.customer.ID,
				PaymentID:  f.paymentID,
				Products:   []models.OrderLineRequest{{ProductID: f.productA.ID, Quantity: 1}},
			})
			if err != nil {
				t.Errorf("Create() error: %v", err)
				return
			}
			identifies[i] = order.Identify
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, identify := range identifies {
		if seen[identify] {
			t.Fatalf("identify %d assigned twice", identify)
		}
		seen[identify] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct identifies, want %d", len(seen), n)
	}
}
