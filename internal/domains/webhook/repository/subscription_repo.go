package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paygate-backend/internal/domains/webhook/model"
)

// =====================================================
// SUBSCRIPTION REPOSITORY IMPLEMENTATION
// =====================================================
type subscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepoInterface {
	return &subscriptionRepository{pool: pool}
}

// Create inserts a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *model.WebhookSubscription) error {
	query := `
		INSERT INTO webhook_subscriptions (
			id, url, secret, events, active
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at, updated_at
	`

	eventsJSON, err := json.Marshal(sub.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		sub.ID,
		sub.URL,
		sub.Secret,
		eventsJSON,
		sub.Active,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create webhook subscription: %w", err)
	}

	return nil
}

// GetByID gets subscription by ID
func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookSubscription, error) {
	query := `
		SELECT id, url, secret, events, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE id = $1
	`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSubscriptionNotFound
		}
		return nil, err
	}

	return sub, nil
}

// List lists all subscriptions, newest first
func (r *subscriptionRepository) List(ctx context.Context) ([]model.WebhookSubscription, error) {
	query := `
		SELECT id, url, secret, events, active, created_at, updated_at
		FROM webhook_subscriptions
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// Update persists url/events/active changes
func (r *subscriptionRepository) Update(ctx context.Context, sub *model.WebhookSubscription) error {
	query := `
		UPDATE webhook_subscriptions
		SET url = $2,
			events = $3,
			active = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	eventsJSON, err := json.Marshal(sub.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, sub.ID, sub.URL, eventsJSON, sub.Active).Scan(&sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to update webhook subscription: %w", err)
	}

	return nil
}

// Delete removes the subscription
func (r *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM webhook_subscriptions WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrSubscriptionNotFound
	}

	return nil
}

// ListActiveForEventWithTx returns active subscriptions subscribed to
// eventType. The JSONB containment operator uses the GIN index on
// events.
func (r *subscriptionRepository) ListActiveForEventWithTx(ctx context.Context, tx pgx.Tx, eventType string) ([]model.WebhookSubscription, error) {
	query := `
		SELECT id, url, secret, events, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE active = TRUE
		AND events ? $1
		ORDER BY created_at ASC
	`

	rows, err := tx.Query(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for event: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// =====================================================
// SCAN HELPERS
// =====================================================

func scanSubscription(row pgx.Row) (*model.WebhookSubscription, error) {
	sub := &model.WebhookSubscription{}
	var eventsJSON []byte

	err := row.Scan(
		&sub.ID,
		&sub.URL,
		&sub.Secret,
		&eventsJSON,
		&sub.Active,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan webhook subscription: %w", err)
	}

	if err := json.Unmarshal(eventsJSON, &sub.Events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	return sub, nil
}

func collectSubscriptions(rows pgx.Rows) ([]model.WebhookSubscription, error) {
	subs := []model.WebhookSubscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}
