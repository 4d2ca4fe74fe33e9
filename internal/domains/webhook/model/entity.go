package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// WEBHOOK SUBSCRIPTION ENTITY
// =====================================================
type WebhookSubscription struct {
	ID  uuid.UUID `json:"id" db:"id"`
	URL string    `json:"url" db:"url"`

	// Secret signs outgoing deliveries. It is returned exactly once,
	// on create, and never serialized afterwards.
	Secret string `json:"-" db:"secret"`

	Events []string `json:"events" db:"events"`
	Active bool     `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Subscribed reports whether this endpoint wants eventType.
func (s *WebhookSubscription) Subscribed(eventType string) bool {
	for _, e := range s.Events {
		if e == eventType {
			return true
		}
	}
	return false
}

// =====================================================
// WEBHOOK EVENT ENTITY (outbox row)
// =====================================================
// One row per (event, subscription). The row is inserted in the same
// transaction as the state change it announces, so a committed change
// always has its deliveries on record.
type WebhookEvent struct {
	ID             uuid.UUID `json:"id" db:"id"`
	SubscriptionID uuid.UUID `json:"subscription_id" db:"subscription_id"`

	EventType string `json:"event_type" db:"event_type"`

	// Payload holds the exact bytes that get signed and sent.
	Payload []byte `json:"payload" db:"payload"`

	Status     string `json:"status" db:"status"`
	RetryCount int    `json:"retry_count" db:"retry_count"`

	// MaxRetries is stamped at fan-out time, so changing the configured
	// budget never reinterprets rows already in flight.
	MaxRetries int `json:"max_retries" db:"max_retries"`

	// NextRetry is the authoritative delivery schedule. NULL means
	// deliver as soon as possible.
	NextRetry *time.Time `json:"next_retry,omitempty" db:"next_retry"`

	// ClaimedAt leases the row to a dispatcher. A stale lease is
	// reclaimable by the poller.
	ClaimedAt *time.Time `json:"-" db:"claimed_at"`

	LastError       *string    `json:"last_error,omitempty" db:"last_error"`
	LastStatusCode  *int       `json:"last_status_code,omitempty" db:"last_status_code"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Exhausted reports whether a failed attempt now would spend the last
// of the retry budget. Attempt n runs with retry_count = n-1, so the
// final permitted attempt sees retry_count+1 = max_retries.
func (e *WebhookEvent) Exhausted() bool {
	return e.RetryCount+1 >= e.MaxRetries
}
