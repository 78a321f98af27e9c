package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

// PasswordResetRepository keeps at most one live reset code per
// email; issuing a new code overwrites the previous one.
type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetRepository(pool *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{pool: pool}
}

// Upsert stores the code for an email, replacing any existing one.
// Concurrent issuance is last-write-wins: only the latest code
// validates afterwards.
func (r *PasswordResetRepository) Upsert(ctx context.Context, email, code string, createdAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (email, token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET token = $2, created_at = $3
	`, email, code, createdAt)
	if err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return nil
}

// Get returns the live code for an email.
func (r *PasswordResetRepository) Get(ctx context.Context, email string) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	err := r.pool.QueryRow(ctx, `
		SELECT email, token, created_at
		FROM password_reset_tokens
		WHERE email = $1
	`, email).Scan(&reset.Email, &reset.Token, &reset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reset code: %w", err)
	}
	return reset, nil
}

// Delete consumes the code for an email.
func (r *PasswordResetRepository) Delete(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM password_reset_tokens WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("failed to delete reset code: %w", err)
	}
	return nil
}
