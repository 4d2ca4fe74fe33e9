package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate-backend/internal/domains/webhook/model"
)

func TestCreateSubscriptionGeneratesSecret(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(subRepo, newFakeEventRepo())

	resp, err := svc.Create(context.Background(), &model.CreateSubscriptionRequest{
		URL:    "https://receiver.example.com/hook",
		Events: []string{model.EventPaymentCompleted, model.EventRefundCreated},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Secret, "whsec_"))
	assert.Len(t, resp.Secret, len("whsec_")+model.SecretBytes*2)
	assert.True(t, resp.Active)

	stored := subRepo.subs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, resp.Secret, stored.Secret)

	// Secrets are unique per subscription
	second, err := svc.Create(context.Background(), &model.CreateSubscriptionRequest{
		URL:    "https://other.example.com/hook",
		Events: []string{model.EventPaymentFailed},
	})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Secret, second.Secret)
}

func TestCreateSubscriptionValidation(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeEventRepo())

	cases := []struct {
		name string
		req  model.CreateSubscriptionRequest
	}{
		{"missing url", model.CreateSubscriptionRequest{Events: []string{model.EventPaymentCompleted}}},
		{"missing events", model.CreateSubscriptionRequest{URL: "https://x.example.com/hook"}},
		{"unknown event type", model.CreateSubscriptionRequest{
			URL:    "https://x.example.com/hook",
			Events: []string{"payment.invented"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tc.req)
			require.Error(t, err)

			var werr *model.WebhookError
			require.ErrorAs(t, err, &werr)
		})
	}
}

func TestUpdateSubscriptionPatchesFields(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(subRepo, newFakeEventRepo())

	resp, err := svc.Create(context.Background(), &model.CreateSubscriptionRequest{
		URL:    "https://receiver.example.com/hook",
		Events: []string{model.EventPaymentCompleted},
	})
	require.NoError(t, err)

	active := false
	updated, err := svc.Update(context.Background(), resp.ID, &model.UpdateSubscriptionRequest{Active: &active})
	require.NoError(t, err)

	assert.False(t, updated.Active)
	assert.Equal(t, resp.URL, updated.URL)
	assert.Equal(t, resp.Events, updated.Events)
}

func TestUpdateSubscriptionRequiresAField(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeEventRepo())

	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateSubscriptionRequest{})
	require.Error(t, err)
}

func TestUpdateSubscriptionUnknownID(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeEventRepo())

	active := true
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateSubscriptionRequest{Active: &active})
	assert.ErrorIs(t, err, model.ErrSubscriptionNotFound)
}

func TestListEventsUnknownSubscriptionIs404(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeEventRepo())

	_, _, err := svc.ListEvents(context.Background(), uuid.New(), &model.ListEventsRequest{})
	assert.ErrorIs(t, err, model.ErrSubscriptionNotFound)
}
