package job

import (
	"context"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/domains/payment/service"
)

// =====================================================
// CLEANUP IDEMPOTENCY KEYS HANDLER
// =====================================================
type CleanupIdempotencyHandler struct {
	paymentService service.PaymentServiceInterface
}

func NewCleanupIdempotencyHandler(paymentService service.PaymentServiceInterface) *CleanupIdempotencyHandler {
	return &CleanupIdempotencyHandler{paymentService: paymentService}
}

func (h *CleanupIdempotencyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	_, err := h.paymentService.CleanupIdempotencyKeys(ctx)
	return err
}
