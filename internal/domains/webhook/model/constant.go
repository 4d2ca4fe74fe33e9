package model

// =====================================================
// EVENT TYPES
// =====================================================
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventRefundCreated    = "refund.created"
	EventRefundProcessed  = "refund.processed"
)

var ValidEventTypes = []string{
	EventPaymentCompleted,
	EventPaymentFailed,
	EventRefundCreated,
	EventRefundProcessed,
}

func IsValidEventType(eventType string) bool {
	for _, t := range ValidEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// =====================================================
// EVENT STATUS
// =====================================================
const (
	EventStatusPending   = "pending"
	EventStatusCompleted = "completed"
	EventStatusFailed    = "failed"
)

// =====================================================
// SIGNATURE HEADERS
// =====================================================
const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeSubscriptionNotFound = "WHK001"
	ErrCodeEventNotFound        = "WHK002"
	ErrCodeValidation           = "WHK003"
	ErrCodeDeliveryFailed       = "WHK004"
	ErrCodeInternalError        = "WHK005"
)

// SecretBytes is the entropy of a generated endpoint secret.
const SecretBytes = 32
