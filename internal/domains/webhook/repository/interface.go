package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate-backend/internal/domains/webhook/model"
)

// =====================================================
// SUBSCRIPTION REPOSITORY INTERFACE
// =====================================================
type SubscriptionRepoInterface interface {
	// Create inserts a new subscription
	Create(ctx context.Context, sub *model.WebhookSubscription) error

	// GetByID gets subscription by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookSubscription, error)

	// List lists all subscriptions, newest first
	List(ctx context.Context) ([]model.WebhookSubscription, error)

	// Update persists url/events/active changes
	Update(ctx context.Context, sub *model.WebhookSubscription) error

	// Delete removes the subscription. Its events cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListActiveForEventWithTx returns active subscriptions whose events
	// set contains eventType. Runs inside the outbox transaction so the
	// fan-out sees a consistent subscription snapshot.
	ListActiveForEventWithTx(ctx context.Context, tx pgx.Tx, eventType string) ([]model.WebhookSubscription, error)
}

// =====================================================
// EVENT (OUTBOX) REPOSITORY INTERFACE
// =====================================================
type EventRepoInterface interface {
	// InsertWithTx inserts outbox rows in the same transaction as the
	// state change they announce.
	InsertWithTx(ctx context.Context, tx pgx.Tx, events []*model.WebhookEvent) error

	// GetByID gets event by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookEvent, error)

	// Claim leases a single due pending event to the caller. Returns
	// model.ErrEventNotPending when the event is terminal, not yet due,
	// or held by a live lease.
	Claim(ctx context.Context, id uuid.UUID, lease time.Duration) (*model.WebhookEvent, error)

	// ListDueIDs returns IDs of due pending events whose lease is free
	// or stale, oldest first. Used by the poller to re-enqueue work the
	// queue may have lost. Does not take the lease; Claim does that at
	// delivery time.
	ListDueIDs(ctx context.Context, limit int, lease time.Duration) ([]uuid.UUID, error)

	// MarkDelivered finalizes the event as completed
	MarkDelivered(ctx context.Context, id uuid.UUID, statusCode int) error

	// MarkRetry schedules the next attempt and releases the lease
	MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, nextRetry time.Time, statusCode *int, lastError string) error

	// MarkFailed finalizes the event as failed after the retry budget
	// is spent, recording the attempt count that spent it.
	MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, statusCode *int, lastError string) error

	// ListBySubscription lists events for a subscription, newest first,
	// optionally filtered by status.
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID, status *string, limit, offset int) ([]model.WebhookEvent, int, error)
}
