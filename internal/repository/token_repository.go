package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

// TokenRepository persists access tokens. It implements token.Store.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *models.AccessToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_tokens (id, user_id, name, token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.UserID, t.Name, t.TokenHash, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	t := &models.AccessToken{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, token_hash, created_at, last_used_at
		FROM access_tokens
		WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.CreatedAt, &t.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM access_tokens WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM access_tokens WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE access_tokens SET last_used_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("failed to touch access token: %w", err)
	}
	return nil
}
