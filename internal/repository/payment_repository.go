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

// PaymentRepository reads the payment method catalog. Methods are
// global but each tenant opts in through the tenant_payment table.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// ListForTenant returns the active payment methods the tenant
// accepts, ordered by name.
func (r *PaymentRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.active
		FROM payments p
		JOIN tenant_payment tp ON tp.payment_id = p.id
		WHERE tp.tenant_id = $1 AND p.active = true
		ORDER BY p.name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var payment models.Payment
		if err := rows.Scan(&payment.ID, &payment.Name, &payment.Active); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating payments: %w", rows.Err())
	}

	return payments, nil
}

// GetEnabledForTenant returns the payment method only if it is active
// and the tenant has opted in.
func (r *PaymentRepository) GetEnabledForTenant(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.name, p.active
		FROM payments p
		JOIN tenant_payment tp ON tp.payment_id = p.id
		WHERE tp.tenant_id = $1 AND p.id = $2 AND p.active = true
	`, tenantID, paymentID).Scan(&payment.ID, &payment.Name, &payment.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}
