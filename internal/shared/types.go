package shared

import "github.com/google/uuid"

// Queue names. Payments and webhook deliveries are isolated so a
// slow receiver cannot starve payment processing.
const (
	QueuePayments = "payments"
	QueueWebhooks = "webhooks"
)

// Task types.
const (
	TypeProcessPayment  = "payment:process"
	TypeDeliverWebhook  = "webhook:deliver"
	TypePollDueEvents   = "webhook:poll_due_events"
	TypeCleanupIdemKeys = "payment:cleanup_idempotency_keys"
)

// ProcessPaymentPayload drives the payment state machine worker.
type ProcessPaymentPayload struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

// DeliverWebhookPayload identifies one outbox row to dispatch.
type DeliverWebhookPayload struct {
	EventID uuid.UUID `json:"event_id"`
}

// PollDueEventsPayload caps how many due events one poll tick claims.
type PollDueEventsPayload struct {
	Limit int `json:"limit"`
}

// CleanupIdemKeysPayload is empty; the TTL lives on the rows.
type CleanupIdemKeysPayload struct{}
