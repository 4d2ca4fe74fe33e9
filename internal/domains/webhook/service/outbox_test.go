package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate-backend/internal/domains/webhook/model"
)

func TestEmitFansOutToMatchingActiveSubscriptions(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	eventRepo := newFakeEventRepo()
	outbox := NewOutboxWriter(subRepo, eventRepo, 5)

	matching := &model.WebhookSubscription{
		ID:     uuid.New(),
		URL:    "https://a.example.com/hook",
		Events: []string{model.EventPaymentCompleted, model.EventRefundCreated},
		Active: true,
	}
	otherEvent := &model.WebhookSubscription{
		ID:     uuid.New(),
		URL:    "https://b.example.com/hook",
		Events: []string{model.EventPaymentFailed},
		Active: true,
	}
	inactive := &model.WebhookSubscription{
		ID:     uuid.New(),
		URL:    "https://c.example.com/hook",
		Events: []string{model.EventPaymentCompleted},
		Active: false,
	}
	for _, sub := range []*model.WebhookSubscription{matching, otherEvent, inactive} {
		subRepo.subs[sub.ID] = sub
	}

	data := map[string]interface{}{
		"payment_id": uuid.New().String(),
		"amount":     "100",
		"currency":   "USD",
	}
	ids, err := outbox.EmitWithTx(context.Background(), nil, model.EventPaymentCompleted, data)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	event := eventRepo.events[ids[0]]
	require.NotNil(t, event)
	assert.Equal(t, matching.ID, event.SubscriptionID)
	assert.Equal(t, model.EventPaymentCompleted, event.EventType)
	assert.Equal(t, model.EventStatusPending, event.Status)
	assert.Zero(t, event.RetryCount)
	assert.Equal(t, 5, event.MaxRetries)

	// The stored payload is a complete envelope, ready to sign and send
	var envelope struct {
		ID   uuid.UUID              `json:"id"`
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &envelope))
	assert.Equal(t, event.ID, envelope.ID)
	assert.Equal(t, model.EventPaymentCompleted, envelope.Type)
	assert.Equal(t, "100", envelope.Data["amount"])
	assert.Equal(t, "USD", envelope.Data["currency"])
}

func TestEmitNoSubscribersIsNoop(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	eventRepo := newFakeEventRepo()
	outbox := NewOutboxWriter(subRepo, eventRepo, 5)

	ids, err := outbox.EmitWithTx(context.Background(), nil, model.EventPaymentCompleted, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, eventRepo.events)
}

func TestEmitRejectsUnknownEventType(t *testing.T) {
	outbox := NewOutboxWriter(newFakeSubscriptionRepo(), newFakeEventRepo(), 5)

	_, err := outbox.EmitWithTx(context.Background(), nil, "payment.invented", nil)
	require.Error(t, err)
}

func TestEmitDistinctPayloadPerSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	eventRepo := newFakeEventRepo()
	outbox := NewOutboxWriter(subRepo, eventRepo, 5)

	for i := 0; i < 3; i++ {
		sub := &model.WebhookSubscription{
			ID:     uuid.New(),
			URL:    "https://receiver.example.com/hook",
			Events: []string{model.EventRefundProcessed},
			Active: true,
		}
		subRepo.subs[sub.ID] = sub
	}

	ids, err := outbox.EmitWithTx(context.Background(), nil, model.EventRefundProcessed, map[string]interface{}{
		"refund_id": uuid.New().String(),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	// Each subscription gets its own row with its own event id baked
	// into the payload
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		event := eventRepo.events[id]
		require.NotNil(t, event)
		assert.False(t, seen[event.SubscriptionID])
		seen[event.SubscriptionID] = true

		var envelope struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(event.Payload, &envelope))
		assert.Equal(t, id, envelope.ID)
	}
}
