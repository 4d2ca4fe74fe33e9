package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"paygate-backend/internal/domains/webhook/model"
	"paygate-backend/internal/domains/webhook/repository"
	"paygate-backend/pkg/logger"
)

// =====================================================
// SUBSCRIPTION SERVICE INTERFACE
// =====================================================
type SubscriptionServiceInterface interface {
	// Create registers an endpoint and returns its secret. This is the
	// only response that ever carries the secret.
	Create(ctx context.Context, req *model.CreateSubscriptionRequest) (*model.CreateSubscriptionResponse, error)

	// Get gets subscription by ID (secret omitted)
	Get(ctx context.Context, id uuid.UUID) (*model.WebhookSubscription, error)

	// List lists all subscriptions (secrets omitted)
	List(ctx context.Context) ([]model.WebhookSubscription, error)

	// Update patches url/events/active
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateSubscriptionRequest) (*model.WebhookSubscription, error)

	// Delete removes the subscription and its delivery history
	Delete(ctx context.Context, id uuid.UUID) error

	// ListEvents lists the subscription's delivery history
	ListEvents(ctx context.Context, id uuid.UUID, req *model.ListEventsRequest) ([]model.WebhookEvent, int, error)
}

// =====================================================
// SUBSCRIPTION SERVICE IMPLEMENTATION
// =====================================================
type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepoInterface
	eventRepo        repository.EventRepoInterface
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepoInterface,
	eventRepo repository.EventRepoInterface,
) SubscriptionServiceInterface {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
	}
}

func (s *subscriptionService) Create(ctx context.Context, req *model.CreateSubscriptionRequest) (*model.CreateSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error(), err)
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}

	sub := &model.WebhookSubscription{
		ID:     uuid.New(),
		URL:    req.URL,
		Secret: secret,
		Events: req.Events,
		Active: true,
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	logger.Info("Webhook subscription created", map[string]interface{}{
		"subscription_id": sub.ID.String(),
		"url":             sub.URL,
		"events":          sub.Events,
	})

	return &model.CreateSubscriptionResponse{
		ID:        sub.ID,
		URL:       sub.URL,
		Events:    sub.Events,
		Secret:    sub.Secret,
		Active:    sub.Active,
		CreatedAt: sub.CreatedAt,
	}, nil
}

func (s *subscriptionService) Get(ctx context.Context, id uuid.UUID) (*model.WebhookSubscription, error) {
	return s.subscriptionRepo.GetByID(ctx, id)
}

func (s *subscriptionService) List(ctx context.Context) ([]model.WebhookSubscription, error) {
	return s.subscriptionRepo.List(ctx)
}

func (s *subscriptionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateSubscriptionRequest) (*model.WebhookSubscription, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error(), err)
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		sub.URL = *req.URL
	}
	if req.Events != nil {
		sub.Events = *req.Events
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}

	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	logger.Info("Webhook subscription updated", map[string]interface{}{
		"subscription_id": sub.ID.String(),
		"active":          sub.Active,
	})

	return sub, nil
}

func (s *subscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.subscriptionRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Webhook subscription deleted", map[string]interface{}{
		"subscription_id": id.String(),
	})

	return nil
}

func (s *subscriptionService) ListEvents(ctx context.Context, id uuid.UUID, req *model.ListEventsRequest) ([]model.WebhookEvent, int, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, 0, model.NewValidationError(err.Error(), err)
	}

	// 404 on unknown subscription, not an empty list
	if _, err := s.subscriptionRepo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}

	return s.eventRepo.ListBySubscription(ctx, id, req.Status, req.Limit, req.Offset)
}

// generateSecret returns a fresh endpoint signing secret.
func generateSecret() (string, error) {
	buf := make([]byte, model.SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(buf), nil
}
