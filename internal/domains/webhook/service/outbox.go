package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate-backend/internal/domains/webhook/model"
	"paygate-backend/internal/domains/webhook/repository"
)

// =====================================================
// OUTBOX WRITER
// =====================================================

// OutboxWriter fans an event out to its subscribers inside the
// caller's transaction. The rows commit atomically with the state
// change they announce; delivery happens later, from the worker.
type OutboxWriter interface {
	// EmitWithTx inserts one pending event row per active subscription
	// listening for eventType. Returns the created event IDs so the
	// caller can enqueue delivery cues after commit.
	EmitWithTx(ctx context.Context, tx pgx.Tx, eventType string, data map[string]interface{}) ([]uuid.UUID, error)
}

type outboxWriter struct {
	subscriptionRepo repository.SubscriptionRepoInterface
	eventRepo        repository.EventRepoInterface
	maxRetries       int
}

func NewOutboxWriter(
	subscriptionRepo repository.SubscriptionRepoInterface,
	eventRepo repository.EventRepoInterface,
	maxRetries int,
) OutboxWriter {
	return &outboxWriter{
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		maxRetries:       maxRetries,
	}
}

// eventEnvelope is the wire shape receivers get. Payload bytes are
// serialized exactly once, here; the dispatcher signs and sends these
// bytes verbatim.
type eventEnvelope struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	CreatedAt time.Time              `json:"created_at"`
	Data      map[string]interface{} `json:"data"`
}

func (w *outboxWriter) EmitWithTx(ctx context.Context, tx pgx.Tx, eventType string, data map[string]interface{}) ([]uuid.UUID, error) {
	if !model.IsValidEventType(eventType) {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	subs, err := w.subscriptionRepo.ListActiveForEventWithTx(ctx, tx, eventType)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	events := make([]*model.WebhookEvent, 0, len(subs))
	ids := make([]uuid.UUID, 0, len(subs))

	for _, sub := range subs {
		eventID := uuid.New()

		payload, err := json.Marshal(eventEnvelope{
			ID:        eventID,
			Type:      eventType,
			CreatedAt: time.Now().UTC(),
			Data:      data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}

		events = append(events, &model.WebhookEvent{
			ID:             eventID,
			SubscriptionID: sub.ID,
			EventType:      eventType,
			Payload:        payload,
			Status:         model.EventStatusPending,
			RetryCount:     0,
			MaxRetries:     w.maxRetries,
		})
		ids = append(ids, eventID)
	}

	if err := w.eventRepo.InsertWithTx(ctx, tx, events); err != nil {
		return nil, err
	}

	return ids, nil
}
