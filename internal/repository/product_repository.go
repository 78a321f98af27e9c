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

const productColumns = "id, tenant_id, category_id, name, description, price, image, active, created_at, updated_at"

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.TenantID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Image,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func buildProductFilter(tenantID uuid.UUID, filter models.ProductFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filter.Name != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.CategoryID != nil {
		where += fmt.Sprintf(" AND category_id = $%d", len(args)+1)
		args = append(args, *filter.CategoryID)
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", len(args)+1)
		args = append(args, *filter.Active)
	}

	return where, args
}

func (r *ProductRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ProductFilter) (*models.ProductListResponse, error) {
	where, args := buildProductFilter(tenantID, filter)
	argIndex := len(args) + 1

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating products: %w", rows.Err())
	}

	return &models.ProductListResponse{
		Products:   products,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(r.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create adds a product. The category must belong to the same
// tenant; a foreign category is reported as a validation failure.
func (r *ProductRepository) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateProductRequest) (*models.Product, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE tenant_id = $1 AND id = $2)",
		tenantID, req.CategoryID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return nil, apperr.Validation("category not found")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product, err := scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products (id, tenant_id, category_id, name, description, price, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		uuid.New(), tenantID, req.CategoryID, req.Name, req.Description, req.Price, active))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	if req.CategoryID != nil {
		var exists bool
		err := r.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM categories WHERE tenant_id = $1 AND id = $2)",
			tenantID, *req.CategoryID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return nil, apperr.Validation("category not found")
		}
	}

	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.CategoryID != nil {
		updates = append(updates, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *req.CategoryID)
		argIndex++
	}
	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, *req.Description)
		argIndex++
	}
	if req.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argIndex))
		args = append(args, *req.Price)
		argIndex++
	}
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *req.Active)
		argIndex++
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE products SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, argIndex+1, productColumns)
	args = append(args, tenantID, id)

	product, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// SetImage stores the opaque storage reference for a product image.
func (r *ProductRepository) SetImage(ctx context.Context, tenantID, id uuid.UUID, image string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE products SET image = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3",
		image, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to set product image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE products SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
