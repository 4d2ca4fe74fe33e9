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
// POLL DUE EVENTS HANDLER
// =====================================================
type PollDueEventsHandler struct {
	dispatcher service.DispatcherInterface
}

func NewPollDueEventsHandler(dispatcher service.DispatcherInterface) *PollDueEventsHandler {
	return &PollDueEventsHandler{dispatcher: dispatcher}
}

func (h *PollDueEventsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.PollDueEventsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("Invalid poll due events payload", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.Limit <= 0 {
		payload.Limit = 100
	}

	_, err := h.dispatcher.PollDue(ctx, payload.Limit)
	return err
}
