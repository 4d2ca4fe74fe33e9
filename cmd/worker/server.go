package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/shared"
	"paygate-backend/pkg/container"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(c *container.Container, cfg *Config, handlers *HandlerRegistry) *asynqServer {
	// Create ServeMux
	mux := asynq.NewServeMux()

	// Register all handlers
	handlers.RegisterHandlers(mux)

	workerCfg := c.Config.Worker

	// Webhooks get the higher weight: deliveries are cheap and
	// latency-sensitive, while payment settlement sleeps through its
	// simulated processing delay.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueWebhooks: workerCfg.WebhookWorkers,
				shared.QueuePayments: workerCfg.PaymentWorkers,
			},
			Concurrency: workerCfg.PaymentWorkers + workerCfg.WebhookWorkers,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	// Start server in goroutine
	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown gracefully shuts down the server with timeout
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down (waiting max 30s)...")

	done := make(chan struct{})
	go func() {
		s.Server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[Worker] ✓ Gracefully stopped")
	case <-time.After(30 * time.Second):
		log.Println("[Worker] ⚠️ Shutdown timeout exceeded")
	}
}
