package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

const customerColumns = "id, tenant_id, name, email, whatsapp, address, active, created_at, updated_at"

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.TenantID,
		&customer.Name,
		&customer.Email,
		&customer.Whatsapp,
		&customer.Address,
		&customer.Active,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// List retrieves the tenant's customers with optional filters.
func (r *CustomerRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.CustomerFilter) (*models.CustomerListResponse, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	argIndex := 2

	if filter.Name != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Name+"%")
		argIndex++
	}
	if filter.Email != "" {
		where += fmt.Sprintf(" AND email ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Email+"%")
		argIndex++
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", argIndex)
		args = append(args, *filter.Active)
		argIndex++
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM customers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		customerColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating customers: %w", rows.Err())
	}

	return &models.CustomerListResponse{
		Customers:  customers,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// GetByID retrieves one customer of the tenant.
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Create adds a customer to the tenant.
func (r *CustomerRepository) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	customer, err := scanCustomer(r.pool.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, name, email, whatsapp, address, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+customerColumns,
		uuid.New(), tenantID, req.Name, req.Email, req.Whatsapp, req.Address, active))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// Update edits a customer of the tenant.
func (r *CustomerRepository) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *req.Email)
		argIndex++
	}
	if req.Whatsapp != nil {
		updates = append(updates, fmt.Sprintf("whatsapp = $%d", argIndex))
		args = append(args, *req.Whatsapp)
		argIndex++
	}
	if req.Address != nil {
		updates = append(updates, fmt.Sprintf("address = $%d", argIndex))
		args = append(args, *req.Address)
		argIndex++
	}
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *req.Active)
		argIndex++
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE customers SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, argIndex+1, customerColumns)
	args = append(args, tenantID, id)

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// Delete soft-deletes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE customers SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
