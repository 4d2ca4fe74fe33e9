package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"paygate-backend/internal/shared"
)

// Enqueuer is the queue surface the services depend on.
// Kept narrow so tests can swap in a fake.
type Enqueuer interface {
	EnqueueProcessPayment(ctx context.Context, paymentID uuid.UUID) error
	EnqueueDeliverWebhook(ctx context.Context, eventID uuid.UUID, delay time.Duration) error
}

// Client wraps asynq.Client. Task ids are entity ids: enqueueing an id
// that is already queued is a no-op, which makes intake retries and
// poller re-enqueues safe.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *Client) EnqueueProcessPayment(ctx context.Context, paymentID uuid.UUID) error {
	payload, err := json.Marshal(shared.ProcessPaymentPayload{PaymentID: paymentID})
	if err != nil {
		return fmt.Errorf("failed to marshal process payment payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeProcessPayment, payload)

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueuePayments),
		asynq.TaskID(paymentID.String()),
		asynq.MaxRetry(10),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// Already queued, nothing to do.
			return nil
		}
		return fmt.Errorf("failed to enqueue process payment: %w", err)
	}

	return nil
}

func (c *Client) EnqueueDeliverWebhook(ctx context.Context, eventID uuid.UUID, delay time.Duration) error {
	payload, err := json.Marshal(shared.DeliverWebhookPayload{EventID: eventID})
	if err != nil {
		return fmt.Errorf("failed to marshal deliver webhook payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeDeliverWebhook, payload)

	opts := []asynq.Option{
		asynq.Queue(shared.QueueWebhooks),
		asynq.TaskID(eventID.String()),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue deliver webhook: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
