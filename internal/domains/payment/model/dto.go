package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE PAYMENT REQUEST/RESPONSE
// =====================================================

type CreatePaymentRequest struct {
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	CustomerEmail string                 `json:"customer_email"`
	CustomerName  *string                `json:"customer_name,omitempty"`
	Description   *string                `json:"description,omitempty"`
	PaymentMethod *string                `json:"payment_method,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Normalize fills defaults before validation.
func (r *CreatePaymentRequest) Normalize() {
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
}

func (r CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.By(decimalPositive)),
		validation.Field(&r.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&r.CustomerEmail, validation.Required, is.Email),
	)
}

func decimalPositive(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return validation.NewError("validation_decimal", "must be a decimal number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return validation.NewError("validation_positive", "must be greater than zero")
	}
	return nil
}

// PaymentResponse is the canonical create/replay body. The marshaled
// form of this struct is what gets stored in the idempotency record.
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customer_email"`
	CreatedAt     time.Time       `json:"created_at"`
	Message       *string         `json:"message,omitempty"`
}

// =====================================================
// GET PAYMENT RESPONSE
// =====================================================

type PaymentDetailResponse struct {
	Payment
	Refunds []Refund `json:"refunds"`
}

// =====================================================
// LIST PAYMENTS REQUEST
// =====================================================

type ListPaymentsRequest struct {
	Status *string `form:"status"`
	Limit  int     `form:"limit"`
	Offset int     `form:"offset"`
}

func (r *ListPaymentsRequest) Normalize() {
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

func (r ListPaymentsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(toInterfaces(ValidPaymentStatuses)...)),
	)
}

// =====================================================
// REFUND REQUEST/RESPONSE
// =====================================================

type CreateRefundRequest struct {
	// Amount defaults to the remaining refundable budget when omitted.
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason *string          `json:"reason,omitempty"`
}

func (r CreateRefundRequest) Validate() error {
	if r.Amount != nil && r.Amount.LessThanOrEqual(decimal.Zero) {
		return validation.NewError("validation_positive", "amount must be greater than zero")
	}
	return nil
}

type RefundResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        *string         `json:"reason,omitempty"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
