package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/domains/payment/service"
	"paygate-backend/internal/shared"
	"paygate-backend/internal/shared/utils"
	"paygate-backend/pkg/logger"
)

// =====================================================
// PROCESS PAYMENT HANDLER
// =====================================================
type ProcessPaymentHandler struct {
	paymentService service.PaymentServiceInterface
}

func NewProcessPaymentHandler(paymentService service.PaymentServiceInterface) *ProcessPaymentHandler {
	return &ProcessPaymentHandler{paymentService: paymentService}
}

func (h *ProcessPaymentHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ProcessPaymentPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		// Malformed payload never becomes valid; do not retry
		logger.Error("Invalid process payment payload", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	return h.paymentService.ProcessPayment(ctx, payload.PaymentID)
}
