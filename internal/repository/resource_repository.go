package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/models"
)

// ResourceRepository reads the static permission catalog. The catalog
// is seeded at deploy time and shared by every tenant; there are no
// write operations.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

func (r *ResourceRepository) List(ctx context.Context) ([]models.Resource, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, action FROM resources ORDER BY name, action")
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Action); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating resources: %w", rows.Err())
	}

	return resources, nil
}
