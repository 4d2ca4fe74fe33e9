package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paygate-backend/internal/domains/payment/model"
)

// =====================================================
// REFUND REPOSITORY IMPLEMENTATION
// =====================================================
type refundRepository struct {
	pool *pgxpool.Pool
}

func NewRefundRepository(pool *pgxpool.Pool) RefundRepoInterface {
	return &refundRepository{pool: pool}
}

// CreateWithTx inserts the refund within the provided transaction
func (r *refundRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, refund *model.Refund) error {
	query := `
		INSERT INTO refunds (
			id, payment_id, amount, reason, status
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		refund.ID,
		refund.PaymentID,
		refund.Amount,
		refund.Reason,
		refund.Status,
	).Scan(&refund.CreatedAt, &refund.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}

// SumNonFailedWithTx totals the refunds that count against the budget.
// Callers must hold the parent payment's row lock so that two refunds
// cannot both read a stale sum.
func (r *refundRepository) SumNonFailedWithTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM refunds
		WHERE payment_id = $1
		AND status != $2
	`

	var total decimal.Decimal
	err := tx.QueryRow(ctx, query, paymentID, model.RefundStatusFailed).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum refunds: %w", err)
	}

	return total, nil
}

// ListByPaymentID lists refunds for a payment, newest first
func (r *refundRepository) ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]model.Refund, error) {
	query := `
		SELECT id, payment_id, amount, reason, status, created_at, updated_at
		FROM refunds
		WHERE payment_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	defer rows.Close()

	refunds := []model.Refund{}
	for rows.Next() {
		var refund model.Refund
		err := rows.Scan(
			&refund.ID,
			&refund.PaymentID,
			&refund.Amount,
			&refund.Reason,
			&refund.Status,
			&refund.CreatedAt,
			&refund.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refund: %w", err)
		}
		refunds = append(refunds, refund)
	}

	return refunds, nil
}
