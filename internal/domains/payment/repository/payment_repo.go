package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"paygate-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT REPOSITORY IMPLEMENTATION
// =====================================================
type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepoInterface {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `
	id, idempotency_key, amount, currency, status,
	customer_email, customer_name, description, payment_method,
	metadata, created_at, updated_at
`

// =====================================================
// TRANSACTION-AWARE METHODS
// =====================================================

// CreateWithTx inserts the payment within the provided transaction
func (r *paymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, idempotency_key, amount, currency, status,
			customer_email, customer_name, description, payment_method, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at, updated_at
	`

	// Serialize metadata to JSONB
	metadataJSON, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	err = tx.QueryRow(ctx, query,
		payment.ID,
		payment.IdempotencyKey,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CustomerEmail,
		payment.CustomerName,
		payment.Description,
		payment.PaymentMethod,
		metadataJSON,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// UpdateStatusCASWithTx performs the compare-and-set status update.
// The WHERE guard lists every legal source status for the target, so a
// concurrent writer that got there first makes this a no-op.
func (r *paymentRepository) UpdateStatusCASWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, target string) error {
	sources := model.PaymentTransitionSources(target)
	if len(sources) == 0 {
		return model.NewInvalidTransitionError("(none)", target)
	}

	query := `
		UPDATE payments
		SET status = $2,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`

	result, err := tx.Exec(ctx, query, id, target, sources)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing payment from a lost race
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrPaymentNotFound
			}
			return fmt.Errorf("failed to read payment status: %w", err)
		}
		return model.NewInvalidTransitionError(current, target)
	}

	return nil
}

// GetForUpdateWithTx loads the payment with a FOR UPDATE row lock
func (r *paymentRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`

	return scanPayment(tx.QueryRow(ctx, query, id))
}

// =====================================================
// STANDALONE METHODS
// =====================================================

// GetByID gets payment by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`

	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey gets payment by its idempotency key
func (r *paymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE idempotency_key = $1
	`

	return scanPayment(r.pool.QueryRow(ctx, query, key))
}

// List lists payments, optionally filtered by status, newest first
func (r *paymentRepository) List(ctx context.Context, status *string, limit, offset int) ([]*model.Payment, int, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE 1=1
	`

	args := []interface{}{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	// Count total
	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ("+query+") as count_query", args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	// Add pagination
	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		payment, err := scanPaymentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}

	return payments, total, nil
}

// =====================================================
// SCAN HELPERS
// =====================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	payment, err := scanPaymentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func scanPaymentRow(row rowScanner) (*model.Payment, error) {
	payment := &model.Payment{}
	var metadataJSON []byte

	err := row.Scan(
		&payment.ID,
		&payment.IdempotencyKey,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CustomerEmail,
		&payment.CustomerName,
		&payment.Description,
		&payment.PaymentMethod,
		&metadataJSON,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &payment.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return payment, nil
}
