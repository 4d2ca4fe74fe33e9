package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paygate-backend/internal/domains/webhook/model"
)

// =====================================================
// EVENT (OUTBOX) REPOSITORY IMPLEMENTATION
// =====================================================
type eventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepoInterface {
	return &eventRepository{pool: pool}
}

const eventColumns = `
	id, subscription_id, event_type, payload, status, retry_count,
	max_retries, next_retry, claimed_at, last_error, last_status_code,
	delivered_at, created_at, updated_at
`

// InsertWithTx inserts outbox rows within the provided transaction
func (r *eventRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, events []*model.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			id, subscription_id, event_type, payload, status, retry_count, max_retries
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at
	`

	for _, event := range events {
		err := tx.QueryRow(ctx, query,
			event.ID,
			event.SubscriptionID,
			event.EventType,
			event.Payload,
			event.Status,
			event.RetryCount,
			event.MaxRetries,
		).Scan(&event.CreatedAt, &event.UpdatedAt)

		if err != nil {
			return fmt.Errorf("failed to insert webhook event: %w", err)
		}
	}

	return nil
}

// GetByID gets event by ID
func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM webhook_events
		WHERE id = $1
	`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// Claim leases a single due pending event. The guard makes a second
// worker holding a stale queue message a clean no-op.
func (r *eventRepository) Claim(ctx context.Context, id uuid.UUID, lease time.Duration) (*model.WebhookEvent, error) {
	query := `
		UPDATE webhook_events
		SET claimed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		AND status = $2
		AND (next_retry IS NULL OR next_retry <= NOW())
		AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $3))
		RETURNING ` + eventColumns + `
	`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id, model.EventStatusPending, lease.Seconds()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotPending
		}
		return nil, err
	}

	return event, nil
}

// ListDueIDs returns IDs of due pending events, oldest first. SKIP
// LOCKED keeps concurrent pollers from blocking on each other.
func (r *eventRepository) ListDueIDs(ctx context.Context, limit int, lease time.Duration) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM webhook_events
		WHERE status = $1
		AND (next_retry IS NULL OR next_retry <= NOW())
		AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.pool.Query(ctx, query, model.EventStatusPending, lease.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due events: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// MarkDelivered finalizes the event as completed
func (r *eventRepository) MarkDelivered(ctx context.Context, id uuid.UUID, statusCode int) error {
	query := `
		UPDATE webhook_events
		SET status = $2,
			last_status_code = $3,
			last_error = NULL,
			claimed_at = NULL,
			delivered_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, model.EventStatusCompleted, statusCode)
	if err != nil {
		return fmt.Errorf("failed to mark event delivered: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

// MarkRetry schedules the next attempt and releases the lease
func (r *eventRepository) MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, nextRetry time.Time, statusCode *int, lastError string) error {
	query := `
		UPDATE webhook_events
		SET retry_count = $2,
			next_retry = $3,
			last_status_code = $4,
			last_error = $5,
			claimed_at = NULL,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, retryCount, nextRetry, statusCode, lastError)
	if err != nil {
		return fmt.Errorf("failed to schedule event retry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

// MarkFailed finalizes the event as failed
func (r *eventRepository) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, statusCode *int, lastError string) error {
	query := `
		UPDATE webhook_events
		SET status = $2,
			retry_count = $3,
			last_status_code = $4,
			last_error = $5,
			claimed_at = NULL,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, model.EventStatusFailed, retryCount, statusCode, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}

	return nil
}

// ListBySubscription lists events for a subscription, newest first
func (r *eventRepository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID, status *string, limit, offset int) ([]model.WebhookEvent, int, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM webhook_events
		WHERE subscription_id = $1
	`

	args := []interface{}{subscriptionID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	// Count total
	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ("+query+") as count_query", args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count webhook events: %w", err)
	}

	// Add pagination
	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list webhook events: %w", err)
	}
	defer rows.Close()

	events := []model.WebhookEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}

	return events, total, nil
}

// =====================================================
// SCAN HELPERS
// =====================================================

func scanEvent(row pgx.Row) (*model.WebhookEvent, error) {
	event := &model.WebhookEvent{}

	err := row.Scan(
		&event.ID,
		&event.SubscriptionID,
		&event.EventType,
		&event.Payload,
		&event.Status,
		&event.RetryCount,
		&event.MaxRetries,
		&event.NextRetry,
		&event.ClaimedAt,
		&event.LastError,
		&event.LastStatusCode,
		&event.DeliveredAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan webhook event: %w", err)
	}

	return event, nil
}
