package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"paygate-backend/internal/domains/payment/model"
	webhookmodel "paygate-backend/internal/domains/webhook/model"
	"paygate-backend/internal/shared/metrics"
	"paygate-backend/pkg/logger"
)

// =====================================================
// PAYMENT PROCESSOR (worker side)
// =====================================================

// ProcessPayment simulates the upstream processor and settles the
// payment. Re-delivery of the same task is harmless: a non-pending
// payment is acknowledged without touching anything.
func (s *paymentService) ProcessPayment(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			logger.Warn("Processing task for unknown payment", map[string]interface{}{
				"payment_id": paymentID.String(),
			})
			return nil
		}
		return err
	}

	if payment.Status != model.PaymentStatusPending {
		metrics.PaymentsProcessed.WithLabelValues("skipped").Inc()
		logger.Debug("Payment already settled", map[string]interface{}{
			"payment_id": paymentID.String(),
			"status":     payment.Status,
		})
		return nil
	}

	succeeded := s.decideOutcome()

	// Simulated processing latency runs before the transaction so the
	// lock and the outbox write stay short.
	if s.cfg.Payment.ProcessingDelay > 0 {
		select {
		case <-time.After(s.cfg.Payment.ProcessingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	target := model.PaymentStatusCompleted
	eventType := webhookmodel.EventPaymentCompleted
	if !succeeded {
		target = model.PaymentStatusFailed
		eventType = webhookmodel.EventPaymentFailed
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	if err := s.paymentRepo.UpdateStatusCASWithTx(ctx, tx, paymentID, target); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			// Another worker settled it between the read and the CAS
			metrics.PaymentsProcessed.WithLabelValues("skipped").Inc()
			return nil
		}
		return err
	}

	data := map[string]interface{}{
		"payment_id":     paymentID.String(),
		"amount":         payment.Amount.String(),
		"currency":       payment.Currency,
		"customer_email": payment.CustomerEmail,
	}
	if !succeeded {
		data["reason"] = "card_declined"
	}

	eventIDs, err := s.outbox.EmitWithTx(ctx, tx, eventType, data)
	if err != nil {
		return err
	}

	if err := s.txManager.CommitTx(ctx, tx); err != nil {
		return err
	}

	s.enqueueDeliveries(ctx, eventIDs)

	metrics.PaymentsProcessed.WithLabelValues(target).Inc()
	logger.Info("Payment processed", map[string]interface{}{
		"payment_id": paymentID.String(),
		"status":     target,
		"events":     len(eventIDs),
	})

	return nil
}

// decideOutcome picks the simulated processor verdict. Test mode pins
// it; otherwise the configured success rate applies.
func (s *paymentService) decideOutcome() bool {
	if s.cfg.Payment.TestMode {
		return s.cfg.Payment.TestPaymentSuccess
	}
	return rand.Float64() < s.cfg.Payment.SuccessRate
}

// =====================================================
// IDEMPOTENCY CLEANUP (worker side)
// =====================================================

func (s *paymentService) CleanupIdempotencyKeys(ctx context.Context) (int, error) {
	removed, err := s.idemRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		logger.Info("Expired idempotency records removed", map[string]interface{}{
			"count": removed,
		})
	}

	return removed, nil
}
