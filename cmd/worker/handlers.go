package main

import (
	"github.com/hibiken/asynq"

	paymentJob "paygate-backend/internal/domains/payment/job"
	webhookJob "paygate-backend/internal/domains/webhook/job"
	"paygate-backend/internal/shared"
	"paygate-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Payment handlers
	processPayment     *paymentJob.ProcessPaymentHandler
	cleanupIdempotency *paymentJob.CleanupIdempotencyHandler

	// Webhook handlers
	deliverWebhook *webhookJob.DeliverWebhookHandler
	pollDueEvents  *webhookJob.PollDueEventsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		// Payment
		processPayment:     paymentJob.NewProcessPaymentHandler(c.PaymentService),
		cleanupIdempotency: paymentJob.NewCleanupIdempotencyHandler(c.PaymentService),

		// Webhook
		deliverWebhook: webhookJob.NewDeliverWebhookHandler(c.Dispatcher),
		pollDueEvents:  webhookJob.NewPollDueEventsHandler(c.Dispatcher),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Payment tasks
	mux.HandleFunc(shared.TypeProcessPayment, h.processPayment.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupIdemKeys, h.cleanupIdempotency.ProcessTask)

	// Webhook tasks
	mux.HandleFunc(shared.TypeDeliverWebhook, h.deliverWebhook.ProcessTask)
	mux.HandleFunc(shared.TypePollDueEvents, h.pollDueEvents.ProcessTask)
}
