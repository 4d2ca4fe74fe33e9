package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"paygate-backend/internal/config"
	"paygate-backend/internal/domains/webhook/model"
	"paygate-backend/internal/domains/webhook/repository"
	"paygate-backend/internal/domains/webhook/signature"
	"paygate-backend/internal/infrastructure/circuitbreaker"
	"paygate-backend/internal/infrastructure/queue"
	"paygate-backend/internal/shared/metrics"
	"paygate-backend/pkg/logger"
)

// claimLease bounds how long a dispatcher may sit on a claimed event
// before the poller hands it to someone else.
const claimLease = 5 * time.Minute

// =====================================================
// DISPATCHER INTERFACE
// =====================================================
type DispatcherInterface interface {
	// Deliver attempts one delivery of the event. Terminal outcomes and
	// scheduling decisions are written to the outbox row; the returned
	// error is nil unless bookkeeping itself failed.
	Deliver(ctx context.Context, eventID uuid.UUID) error

	// PollDue re-enqueues due pending events the queue may have lost.
	// Returns the number of events enqueued.
	PollDue(ctx context.Context, limit int) (int, error)
}

// =====================================================
// DISPATCHER IMPLEMENTATION
// =====================================================
type dispatcher struct {
	eventRepo        repository.EventRepoInterface
	subscriptionRepo repository.SubscriptionRepoInterface
	enqueuer         queue.Enqueuer
	breakers         *circuitbreaker.Manager
	client           *http.Client
	cfg              config.WebhookConfig
}

func NewDispatcher(
	eventRepo repository.EventRepoInterface,
	subscriptionRepo repository.SubscriptionRepoInterface,
	enqueuer queue.Enqueuer,
	breakers *circuitbreaker.Manager,
	cfg config.WebhookConfig,
) DispatcherInterface {
	return &dispatcher{
		eventRepo:        eventRepo,
		subscriptionRepo: subscriptionRepo,
		enqueuer:         enqueuer,
		breakers:         breakers,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
	}
}

func (d *dispatcher) Deliver(ctx context.Context, eventID uuid.UUID) error {
	// Step 1: Claim the event. A lost race or a stale queue message
	// lands here and exits quietly.
	event, err := d.eventRepo.Claim(ctx, eventID, claimLease)
	if err != nil {
		if errors.Is(err, model.ErrEventNotPending) {
			logger.Debug("Skipping webhook event: not claimable", map[string]interface{}{
				"event_id": eventID.String(),
			})
			return nil
		}
		if errors.Is(err, model.ErrEventNotFound) {
			return nil
		}
		return err
	}

	// Step 2: Load the endpoint. A subscription deleted or disabled
	// after fan-out makes the event undeliverable.
	sub, err := d.subscriptionRepo.GetByID(ctx, event.SubscriptionID)
	if err != nil {
		if errors.Is(err, model.ErrSubscriptionNotFound) {
			metrics.WebhookDeliveries.WithLabelValues("dropped").Inc()
			return d.eventRepo.MarkFailed(ctx, event.ID, event.RetryCount, nil, "subscription removed")
		}
		return err
	}
	if !sub.Active {
		metrics.WebhookDeliveries.WithLabelValues("dropped").Inc()
		return d.eventRepo.MarkFailed(ctx, event.ID, event.RetryCount, nil, "subscription inactive")
	}

	// Step 3: Sign and send the stored payload bytes verbatim.
	statusCode, attemptErr := d.attempt(ctx, sub, event)

	// Step 4: Record the outcome.
	if attemptErr == nil {
		metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
		logger.Info("Webhook delivered", map[string]interface{}{
			"event_id":    event.ID.String(),
			"event_type":  event.EventType,
			"url":         sub.URL,
			"status_code": statusCode,
			"attempt":     event.RetryCount + 1,
		})
		return d.eventRepo.MarkDelivered(ctx, event.ID, statusCode)
	}

	var codePtr *int
	if statusCode != 0 {
		codePtr = &statusCode
	}

	attempt := event.RetryCount + 1

	if event.Exhausted() {
		metrics.WebhookDeliveries.WithLabelValues("exhausted").Inc()
		logger.Warn("Webhook delivery exhausted", map[string]interface{}{
			"event_id":   event.ID.String(),
			"event_type": event.EventType,
			"url":        sub.URL,
			"attempts":   attempt,
			"error":      attemptErr.Error(),
		})
		return d.eventRepo.MarkFailed(ctx, event.ID, attempt, codePtr, attemptErr.Error())
	}

	delay := NextRetryDelay(attempt, d.cfg.TestRetryIntervals)
	nextRetry := time.Now().Add(delay)

	if err := d.eventRepo.MarkRetry(ctx, event.ID, attempt, nextRetry, codePtr, attemptErr.Error()); err != nil {
		return err
	}

	metrics.WebhookDeliveries.WithLabelValues("retried").Inc()
	logger.Warn("Webhook delivery failed, retry scheduled", map[string]interface{}{
		"event_id":   event.ID.String(),
		"url":        sub.URL,
		"attempt":    attempt,
		"next_retry": nextRetry.Format(time.RFC3339),
		"error":      attemptErr.Error(),
	})

	// Wake-up cue only. If this enqueue is lost, the poller picks the
	// row up once next_retry passes.
	if err := d.enqueuer.EnqueueDeliverWebhook(ctx, event.ID, delay); err != nil {
		logger.Warn("Failed to enqueue webhook retry cue", map[string]interface{}{
			"event_id": event.ID.String(),
			"error":    err.Error(),
		})
	}

	return nil
}

// attempt performs a single signed HTTP POST. A non-2xx response or a
// transport error is returned as the attempt error; the status code is
// 0 when no response was received.
func (d *dispatcher) attempt(ctx context.Context, sub *model.WebhookSubscription, event *model.WebhookEvent) (int, error) {
	breaker := d.breakers.Get(sub.URL)

	start := time.Now()
	result, err := breaker.Execute(func() (interface{}, error) {
		return d.post(ctx, sub, event)
	})
	metrics.WebhookDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("circuit open for %s", sub.URL)
		}
		var respErr *responseError
		if errors.As(err, &respErr) {
			return respErr.StatusCode, err
		}
		return 0, err
	}

	return result.(int), nil
}

type responseError struct {
	StatusCode int
}

func (e *responseError) Error() string {
	return "unexpected status " + strconv.Itoa(e.StatusCode)
}

func (d *dispatcher) post(ctx context.Context, sub *model.WebhookSubscription, event *model.WebhookEvent) (int, error) {
	timestampMs := time.Now().UnixMilli()
	sig := signature.Sign(sub.Secret, timestampMs, event.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(event.Payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(model.HeaderEvent, event.EventType)
	req.Header.Set(model.HeaderSignature, sig)
	req.Header.Set(model.HeaderTimestamp, strconv.FormatInt(timestampMs, 10))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &responseError{StatusCode: resp.StatusCode}
	}

	return resp.StatusCode, nil
}

func (d *dispatcher) PollDue(ctx context.Context, limit int) (int, error) {
	ids, err := d.eventRepo.ListDueIDs(ctx, limit, claimLease)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, id := range ids {
		if err := d.enqueuer.EnqueueDeliverWebhook(ctx, id, 0); err != nil {
			logger.Warn("Failed to enqueue due webhook event", map[string]interface{}{
				"event_id": id.String(),
				"error":    err.Error(),
			})
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		metrics.OutboxEventsClaimed.Add(float64(enqueued))
		logger.Info("Re-enqueued due webhook events", map[string]interface{}{
			"count": enqueued,
		})
	}

	return enqueued, nil
}
