package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAYMENT ENTITY
// =====================================================
type Payment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	IdempotencyKey string    `json:"idempotency_key" db:"idempotency_key"`

	// Amount is immutable after creation.
	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`

	Status string `json:"status" db:"status"`

	// Customer
	CustomerEmail string  `json:"customer_email" db:"customer_email"`
	CustomerName  *string `json:"customer_name,omitempty" db:"customer_name"`

	Description   *string                `json:"description,omitempty" db:"description"`
	PaymentMethod *string                `json:"payment_method,omitempty" db:"payment_method"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the payment can never change status again.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusFailed || p.Status == PaymentStatusRefunded
}

// IsRefundable reports whether a new refund may be created.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusPartialRefunded
}

// =====================================================
// REFUND ENTITY
// =====================================================
type Refund struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PaymentID uuid.UUID `json:"payment_id" db:"payment_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Reason *string         `json:"reason,omitempty" db:"reason"`
	Status string          `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CountsAgainstBudget reports whether this refund's amount reduces the
// remaining refundable budget of the parent payment.
func (r *Refund) CountsAgainstBudget() bool {
	return r.Status != RefundStatusFailed
}

// =====================================================
// IDEMPOTENCY RECORD ENTITY
// =====================================================
type IdempotencyRecord struct {
	Key       string     `json:"key" db:"key"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty" db:"payment_id"`

	// Response holds the exact body previously returned to the client.
	Response []byte `json:"response" db:"response"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// IsExpired reports whether the record should be treated as absent.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
