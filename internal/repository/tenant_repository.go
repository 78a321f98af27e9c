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

type TenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

// CreateWithOwner registers a company: it creates the tenant and its
// owner user in one transaction. The owner flag grants the user every
// permission within the tenant.
func (r *TenantRepository) CreateWithOwner(ctx context.Context, company, name, email, passwordHash string) (*models.Tenant, *models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenant := &models.Tenant{}
	err = tx.QueryRow(ctx, `
		INSERT INTO tenants (id, name)
		VALUES ($1, $2)
		RETURNING id, name, active, created_at, updated_at
	`, uuid.New(), company).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	user := &models.User{}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, tenant_id, name, email, password_hash, owner)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, tenant_id, name, email, password_hash, owner, active, created_at, updated_at
	`, uuid.New(), tenant.ID, name, email, passwordHash).Scan(
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
		if isUniqueViolation(err) {
			return nil, nil, apperr.Validation("email already taken")
		}
		return nil, nil, fmt.Errorf("failed to create owner user: %w", err)
	}

	// New tenants start accepting every active payment method; they
	// can narrow the list later.
	_, err = tx.Exec(ctx, `
		INSERT INTO tenant_payment (tenant_id, payment_id)
		SELECT $1, id FROM payments WHERE active = true
	`, tenant.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enable payment methods: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return tenant, user, nil
}

// GetByID retrieves a tenant.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}
