package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/domains/webhook/service"
	"paygate-backend/internal/shared"
	"paygate-backend/internal/shared/utils"
	"paygate-backend/pkg/logger"
)

// =====================================================
// DELIVER WEBHOOK HANDLER
// =====================================================
type DeliverWebhookHandler struct {
	dispatcher service.DispatcherInterface
}

func NewDeliverWebhookHandler(dispatcher service.DispatcherInterface) *DeliverWebhookHandler {
	return &DeliverWebhookHandler{dispatcher: dispatcher}
}

func (h *DeliverWebhookHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.DeliverWebhookPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("Invalid deliver webhook payload", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	return h.dispatcher.Deliver(ctx, payload.EventID)
}
