package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrRefundNotFound         = errors.New("refund not found")
	ErrInvalidTransition      = errors.New("invalid payment status transition")
	ErrInvalidState           = errors.New("payment state does not permit this operation")
	ErrDuplicateKey           = errors.New("idempotency key already exists")
	ErrRefundExceedsRemaining = errors.New("refund amount exceeds remaining budget")
	ErrIdempotencyNotFound    = errors.New("idempotency record not found")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewPaymentNotFoundError(paymentID string) *PaymentError {
	return NewPaymentError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment not found: %s", paymentID),
		ErrPaymentNotFound,
	)
}

func NewValidationError(message string, err error) *PaymentError {
	return NewPaymentError(ErrCodeValidation, message, err)
}

func NewInvalidTransitionError(from, to string) *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot transition payment from %s to %s", from, to),
		ErrInvalidTransition,
	)
}

func NewInvalidStateError(status string) *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidState,
		fmt.Sprintf("Operation not allowed while payment is %s", status),
		ErrInvalidState,
	)
}

func NewRefundExceedsRemainingError(requested, remaining string) *PaymentError {
	return NewPaymentError(
		ErrCodeRefundExceedsLimit,
		fmt.Sprintf("Refund amount %s exceeds remaining budget %s", requested, remaining),
		ErrRefundExceedsRemaining,
	)
}
