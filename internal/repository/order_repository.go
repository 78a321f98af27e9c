package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

const orderColumns = "id, tenant_id, user_id, customer_id, payment_id, identify, status, created_at, updated_at"

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.TenantID,
		&order.UserID,
		&order.CustomerID,
		&order.PaymentID,
		&order.Identify,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create stores a new order with its lines in one transaction. The
// identify number comes from the per tenant counter row; the upsert
// takes a row lock, so concurrent orders on the same tenant serialize
// there and each gets a distinct consecutive number. Should the
// unique (tenant_id, identify) index still fire, for example after a
// counter row was reset by hand, the whole transaction is retried
// with a fresh number.
func (r *OrderRepository) Create(ctx context.Context, tenantID, userID uuid.UUID, customerID, paymentID uuid.UUID, items []models.OrderItem) (*models.Order, error) {
	var order *models.Order
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		order, err = r.create(ctx, tenantID, userID, customerID, paymentID, items)
		if err == nil || !isUniqueViolation(err) {
			return order, err
		}
	}
	return nil, fmt.Errorf("failed to allocate a free order number: %w", err)
}

func (r *OrderRepository) create(ctx context.Context, tenantID, userID uuid.UUID, customerID, paymentID uuid.UUID, items []models.OrderItem) (*models.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var identify int
	err = tx.QueryRow(ctx, `
		INSERT INTO order_counters (tenant_id, last_identify)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET last_identify = order_counters.last_identify + 1
		RETURNING last_identify
	`, tenantID).Scan(&identify)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (id, tenant_id, user_id, customer_id, payment_id, identify, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		uuid.New(), tenantID, userID, customerID, paymentID, identify, models.OrderStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_product (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	order.Total = models.ItemsTotal(items)
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrderFilter(tenantID uuid.UUID, filter models.OrderFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filter.Identify != nil {
		where += fmt.Sprintf(" AND identify = $%d", len(args)+1)
		args = append(args, *filter.Identify)
	}
	if filter.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", len(args)+1)
		args = append(args, *filter.UserID)
	}
	if filter.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", len(args)+1)
		args = append(args, *filter.CustomerID)
	}
	if filter.PaymentID != nil {
		where += fmt.Sprintf(" AND payment_id = $%d", len(args)+1)
		args = append(args, *filter.PaymentID)
	}

	return where, args
}

func (r *OrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.OrderFilter) (*models.OrderListResponse, error) {
	where, args := buildOrderFilter(tenantID, filter)
	argIndex := len(args) + 1

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY identify DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating orders: %w", rows.Err())
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return &models.OrderListResponse{
		Orders:     orders,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// UpdateStatus changes the order status. Any valid status can follow
// any other; validity is checked by the handler.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.OrderStatus) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE orders SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3",
		status, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes the order and its lines. Orders are hard deleted;
// the identify number is never reused because the counter only moves
// forward.
func (r *OrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM order_product
		WHERE order_id IN (SELECT id FROM orders WHERE tenant_id = $1 AND id = $2)
	`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	result, err := tx.Exec(ctx,
		"DELETE FROM orders WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order delete: %w", err)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT op.product_id, p.name, op.quantity, op.price
		FROM order_product op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY p.name
	`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return fmt.Errorf("error iterating order items: %w", rows.Err())
	}

	order.Items = items
	order.Total = models.ItemsTotal(items)
	return nil
}
