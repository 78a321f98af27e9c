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

const roleColumns = "id, tenant_id, name, active, created_at, updated_at"

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func scanRole(row pgx.Row) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(
		&role.ID,
		&role.TenantID,
		&role.Name,
		&role.Active,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.RoleFilter) (*models.RoleListResponse, error) {
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM roles "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM roles %s ORDER BY name LIMIT $%d OFFSET $%d",
		roleColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, *role)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating roles: %w", rows.Err())
	}

	return &models.RoleListResponse{
		Roles:      roles,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if err := r.loadResources(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Create adds a role and its permission assignments in one
// transaction. Resource ids come from the static catalog.
func (r *RoleRepository) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateRoleRequest) (*models.Role, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	role, err := scanRole(tx.QueryRow(ctx, `
		INSERT INTO roles (id, tenant_id, name, active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roleColumns,
		uuid.New(), tenantID, req.Name, active))
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	if err := attachResources(ctx, tx, role.ID, req.Resources); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit role: %w", err)
	}

	if err := r.loadResources(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update edits a role and, when a resource list is present, replaces
// its permission assignments.
func (r *RoleRepository) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateRoleRequest) (*models.Role, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

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
		"UPDATE roles SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, argIndex+1, roleColumns)
	args = append(args, tenantID, id)

	role, err := scanRole(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if req.Resources != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM role_resource WHERE role_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear role resources: %w", err)
		}
		if err := attachResources(ctx, tx, id, *req.Resources); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit role update: %w", err)
	}

	if err := r.loadResources(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE roles SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) loadResources(ctx context.Context, role *models.Role) error {
	rows, err := r.pool.Query(ctx, `
		SELECT res.id, res.name, res.action
		FROM role_resource rr
		JOIN resources res ON res.id = rr.resource_id
		WHERE rr.role_id = $1
		ORDER BY res.name, res.action
	`, role.ID)
	if err != nil {
		return fmt.Errorf("failed to load role resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Action); err != nil {
			return fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if rows.Err() != nil {
		return fmt.Errorf("error iterating resources: %w", rows.Err())
	}

	role.Resources = resources
	return nil
}

func attachResources(ctx context.Context, tx pgx.Tx, roleID uuid.UUID, resourceIDs []uuid.UUID) error {
	for _, resourceID := range resourceIDs {
		result, err := tx.Exec(ctx, `
			INSERT INTO role_resource (role_id, resource_id)
			SELECT $1, id FROM resources WHERE id = $2
		`, roleID, resourceID)
		if err != nil {
			return fmt.Errorf("failed to attach resource: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.Validation("resource not found")
		}
	}
	return nil
}
