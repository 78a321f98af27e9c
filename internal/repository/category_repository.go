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

const categoryColumns = "id, tenant_id, name, active, created_at, updated_at"

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(
		&category.ID,
		&category.TenantID,
		&category.Name,
		&category.Active,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *CategoryRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.CategoryFilter) (*models.CategoryListResponse, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	argIndex := 2

	if filter.Name != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Name+"%")
		argIndex++
	}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", argIndex)
		args = append(args, *filter.Active)
		argIndex++
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM categories %s ORDER BY name LIMIT $%d OFFSET $%d",
		categoryColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating categories: %w", rows.Err())
	}

	return &models.CategoryListResponse{
		Categories: categories,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	category, err := scanCategory(r.pool.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateCategoryRequest) (*models.Category, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	category, err := scanCategory(r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, tenant_id, name, active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		uuid.New(), tenantID, req.Name, active))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *req.Active)
		argIndex++
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE categories SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, argIndex+1, categoryColumns)
	args = append(args, tenantID, id)

	category, err := scanCategory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE categories SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
