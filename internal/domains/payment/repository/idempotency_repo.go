package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"paygate-backend/internal/domains/payment/model"
)

// =====================================================
// IDEMPOTENCY REPOSITORY IMPLEMENTATION
// =====================================================
type idempotencyRepository struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepository(pool *pgxpool.Pool) IdempotencyRepoInterface {
	return &idempotencyRepository{pool: pool}
}

// CreateWithTx stores the response bytes for a key. Committing in the
// same transaction as the payment insert means the record exists iff
// the payment does.
func (r *idempotencyRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, record *model.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (
			key, payment_id, response, expires_at
		) VALUES (
			$1, $2, $3, $4
		)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		record.Key,
		record.PaymentID,
		record.Response,
		record.ExpiresAt,
	).Scan(&record.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create idempotency record: %w", err)
	}

	return nil
}

// Lookup returns the record for key. Expired records are treated as
// absent; the hourly cleanup job physically removes them later.
func (r *idempotencyRepository) Lookup(ctx context.Context, key string) (*model.IdempotencyRecord, error) {
	query := `
		SELECT key, payment_id, response, created_at, expires_at
		FROM idempotency_keys
		WHERE key = $1
		AND expires_at > NOW()
	`

	record := &model.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&record.Key,
		&record.PaymentID,
		&record.Response,
		&record.CreatedAt,
		&record.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrIdempotencyNotFound
		}
		return nil, fmt.Errorf("failed to lookup idempotency record: %w", err)
	}

	return record, nil
}

// DeleteExpired removes records past their TTL
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `
		DELETE FROM idempotency_keys
		WHERE expires_at <= $1
	`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired idempotency records: %w", err)
	}

	return int(result.RowsAffected()), nil
}
