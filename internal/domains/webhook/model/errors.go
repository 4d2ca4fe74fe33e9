package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")
	ErrEventNotFound        = errors.New("webhook event not found")
	ErrEventNotPending      = errors.New("webhook event is not pending")
)

// =====================================================
// CUSTOM WEBHOOK ERROR
// =====================================================

type WebhookError struct {
	Code    string
	Message string
	Err     error
}

func (e *WebhookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WebhookError) Unwrap() error {
	return e.Err
}

func NewWebhookError(code, message string, err error) *WebhookError {
	return &WebhookError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewSubscriptionNotFoundError(id string) *WebhookError {
	return NewWebhookError(
		ErrCodeSubscriptionNotFound,
		fmt.Sprintf("Webhook subscription not found: %s", id),
		ErrSubscriptionNotFound,
	)
}

func NewValidationError(message string, err error) *WebhookError {
	return NewWebhookError(ErrCodeValidation, message, err)
}
