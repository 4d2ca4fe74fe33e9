package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paygate-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT REPOSITORY INTERFACE
// =====================================================
type PaymentRepoInterface interface {
	// ============================================
	// TRANSACTION-AWARE METHODS
	// ============================================

	// CreateWithTx inserts the payment within the provided transaction.
	// Returns model.ErrDuplicateKey on an idempotency_key collision.
	CreateWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// UpdateStatusCASWithTx moves the payment to target only if its
	// current status is a legal source for that target. Returns
	// model.ErrInvalidTransition when the guard matches no row but the
	// payment exists, model.ErrPaymentNotFound when it does not.
	UpdateStatusCASWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, target string) error

	// GetForUpdateWithTx loads the payment with a row lock, serializing
	// concurrent refunds against the same parent.
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// ============================================
	// STANDALONE METHODS
	// ============================================

	// GetByID gets payment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// GetByIdempotencyKey gets payment by its idempotency key
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Payment, error)

	// List lists payments, optionally filtered by status, newest first
	List(ctx context.Context, status *string, limit, offset int) ([]*model.Payment, int, error)
}

// =====================================================
// REFUND REPOSITORY INTERFACE
// =====================================================
type RefundRepoInterface interface {
	// CreateWithTx inserts the refund within the provided transaction
	CreateWithTx(ctx context.Context, tx pgx.Tx, refund *model.Refund) error

	// SumNonFailedWithTx returns the total amount of the payment's
	// refunds that count against the refundable budget.
	SumNonFailedWithTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (decimal.Decimal, error)

	// ListByPaymentID lists refunds for a payment, newest first
	ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]model.Refund, error)
}

// =====================================================
// IDEMPOTENCY REPOSITORY INTERFACE
// =====================================================
type IdempotencyRepoInterface interface {
	// CreateWithTx stores the response bytes for a key within the
	// provided transaction.
	CreateWithTx(ctx context.Context, tx pgx.Tx, record *model.IdempotencyRecord) error

	// Lookup returns the record for key, or model.ErrIdempotencyNotFound
	// when the key is absent or expired.
	Lookup(ctx context.Context, key string) (*model.IdempotencyRecord, error)

	// DeleteExpired removes records past their TTL. Returns the number
	// of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// =====================================================
// TRANSACTION MANAGER
// =====================================================
type TransactionManager interface {
	// BeginTx starts a new transaction
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CommitTx commits transaction
	CommitTx(ctx context.Context, tx pgx.Tx) error

	// RollbackTx rolls back transaction
	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
