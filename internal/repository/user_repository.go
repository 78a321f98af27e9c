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

const userColumns = "id, tenant_id, name, email, password_hash, owner, active, created_at, updated_at"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Owner,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail looks a user up across tenants. Used only by the
// authentication flows, which run before a tenant is known.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByID loads a user by primary key. Used by the auth middleware
// after token validation, which is why it is not tenant-scoped.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetInTenant loads a user that must belong to the given tenant.
func (r *UserRepository) GetInTenant(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List retrieves the tenant's users with optional filters.
func (r *UserRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.UserFilter) (*models.UserListResponse, error) {
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating users: %w", rows.Err())
	}

	return &models.UserListResponse{
		Users:      users,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// Create adds a user to the tenant and assigns its roles in one
// transaction. The tenant id is stamped from the authenticated
// session, never from client input.
func (r *UserRepository) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateUserRequest, passwordHash string) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (id, tenant_id, name, email, password_hash, owner, active)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		RETURNING `+userColumns,
		uuid.New(), tenantID, req.Name, req.Email, passwordHash, active))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("email already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := assignRoles(ctx, tx, tenantID, user.ID, req.Roles); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update edits a tenant user and, when a role list is present,
// replaces its role assignments.
func (r *UserRepository) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateUserRequest, passwordHash *string) (*models.User, error) {
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
	if req.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *req.Email)
		argIndex++
	}
	if passwordHash != nil {
		updates = append(updates, fmt.Sprintf("password_hash = $%d", argIndex))
		args = append(args, *passwordHash)
		argIndex++
	}
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *req.Active)
		argIndex++
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, argIndex+1, userColumns)
	args = append(args, tenantID, id)

	user, err := scanUser(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperr.Validation("email already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if req.Roles != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM role_user WHERE user_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear user roles: %w", err)
		}
		if err := assignRoles(ctx, tx, tenantID, id, *req.Roles); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes a user. Users are never physically removed
// because orders keep referencing their creator.
func (r *UserRepository) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE users SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateProfile edits the authenticated user's own record.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email, passwordHash *string) (*models.User, error) {
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *name)
		argIndex++
	}
	if email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *email)
		argIndex++
	}
	if passwordHash != nil {
		updates = append(updates, fmt.Sprintf("password_hash = $%d", argIndex))
		args = append(args, *passwordHash)
		argIndex++
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(updates, ", "), argIndex, userColumns)
	args = append(args, id)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperr.Validation("email already taken")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdatePasswordByEmail rehashes a password after a reset.
func (r *UserRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE users SET password_hash = $1, updated_at = now() WHERE email = $2",
		passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *UserRepository) loadRoles(ctx context.Context, user *models.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT ro.id, ro.tenant_id, ro.name, ro.active, ro.created_at, ro.updated_at
		FROM role_user ru
		JOIN roles ro ON ro.id = ru.role_id
		WHERE ru.user_id = $1
		ORDER BY ro.name
	`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Active, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if rows.Err() != nil {
		return fmt.Errorf("error iterating roles: %w", rows.Err())
	}

	user.Roles = roles
	return nil
}

// assignRoles links a user to roles, accepting only roles of the same
// tenant; a foreign role id is reported like a missing one.
func assignRoles(ctx context.Context, tx pgx.Tx, tenantID, userID uuid.UUID, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		result, err := tx.Exec(ctx, `
			INSERT INTO role_user (role_id, user_id)
			SELECT id, $3 FROM roles WHERE tenant_id = $1 AND id = $2
		`, tenantID, roleID, userID)
		if err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.Validation("role not found")
		}
	}
	return nil
}
