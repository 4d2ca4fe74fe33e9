package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paygate-backend/internal/config"
	"paygate-backend/internal/domains/payment/model"
	"paygate-backend/internal/domains/payment/repository"
	webhookmodel "paygate-backend/internal/domains/webhook/model"
	webhookservice "paygate-backend/internal/domains/webhook/service"
	"paygate-backend/internal/infrastructure/queue"
	"paygate-backend/internal/shared/response"
	"paygate-backend/pkg/cache"
	"paygate-backend/pkg/logger"
)

// =====================================================
// PAYMENT SERVICE INTERFACE
// =====================================================
type PaymentServiceInterface interface {
	// CreatePayment accepts a payment request under the given
	// idempotency key. The result carries the exact body and status the
	// handler must write; a replayed request gets the original bytes.
	CreatePayment(ctx context.Context, req *model.CreatePaymentRequest, idemKey string, keyGenerated bool) (*CreatePaymentResult, error)

	// GetPayment returns the payment with its refunds, newest first
	GetPayment(ctx context.Context, id uuid.UUID) (*model.PaymentDetailResponse, error)

	// ListPayments lists payments, optionally filtered by status
	ListPayments(ctx context.Context, req *model.ListPaymentsRequest) ([]*model.Payment, int, error)

	// RequestRefund creates and settles a refund synchronously under
	// the given idempotency key. As with CreatePayment, the result
	// carries the exact body and status the handler must write; a
	// replayed request gets the original bytes instead of a second
	// refund.
	RequestRefund(ctx context.Context, paymentID uuid.UUID, req *model.CreateRefundRequest, idemKey string, keyGenerated bool) (*RefundResult, error)

	// ProcessPayment drives a pending payment to completed or failed.
	// Called from the worker; safe to run more than once per payment.
	ProcessPayment(ctx context.Context, paymentID uuid.UUID) error

	// CleanupIdempotencyKeys removes expired idempotency records
	CleanupIdempotencyKeys(ctx context.Context) (int, error)
}

// CreatePaymentResult is what the handler writes to the wire.
type CreatePaymentResult struct {
	Body       []byte
	StatusCode int
	Replayed   bool
}

// RefundResult is what the refund handler writes to the wire.
type RefundResult struct {
	Body       []byte
	StatusCode int
	Replayed   bool
}

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type paymentService struct {
	paymentRepo repository.PaymentRepoInterface
	refundRepo  repository.RefundRepoInterface
	idemRepo    repository.IdempotencyRepoInterface
	txManager   repository.TransactionManager
	outbox      webhookservice.OutboxWriter
	enqueuer    queue.Enqueuer
	cache       cache.Cache
	cfg         *config.Config
}

func NewPaymentService(
	paymentRepo repository.PaymentRepoInterface,
	refundRepo repository.RefundRepoInterface,
	idemRepo repository.IdempotencyRepoInterface,
	txManager repository.TransactionManager,
	outbox webhookservice.OutboxWriter,
	enqueuer queue.Enqueuer,
	cacheClient cache.Cache,
	cfg *config.Config,
) PaymentServiceInterface {
	return &paymentService{
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		idemRepo:    idemRepo,
		txManager:   txManager,
		outbox:      outbox,
		enqueuer:    enqueuer,
		cache:       cacheClient,
		cfg:         cfg,
	}
}

func idempotencyCacheKey(key string) string {
	return "idempotency:" + key
}

// =====================================================
// CREATE PAYMENT
// =====================================================

func (s *paymentService) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest, idemKey string, keyGenerated bool) (*CreatePaymentResult, error) {
	// Step 1: Replay check. Server-generated keys skip it; the client
	// never saw the key, so there is nothing to replay against.
	if !keyGenerated {
		if body, ok := s.lookupStoredResponse(ctx, idemKey); ok {
			return &CreatePaymentResult{
				Body:       body,
				StatusCode: http.StatusOK,
				Replayed:   true,
			}, nil
		}
	}

	// Step 2: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error(), err)
	}

	payment := &model.Payment{
		ID:             uuid.New(),
		IdempotencyKey: idemKey,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         model.PaymentStatusPending,
		CustomerEmail:  req.CustomerEmail,
		CustomerName:   req.CustomerName,
		Description:    req.Description,
		PaymentMethod:  req.PaymentMethod,
		Metadata:       req.Metadata,
	}

	// Step 3: Insert payment and idempotency record atomically
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	if err := s.paymentRepo.CreateWithTx(ctx, tx, payment); err != nil {
		if errors.Is(err, model.ErrDuplicateKey) {
			// Two requests raced past the replay check with the same
			// key. The loser answers with the winner's payment.
			s.txManager.RollbackTx(ctx, tx)
			return s.duplicateKeyResult(ctx, idemKey)
		}
		return nil, err
	}

	body, err := marshalEnvelope(model.PaymentResponse{
		ID:            payment.ID,
		Status:        payment.Status,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CustomerEmail: payment.CustomerEmail,
		CreatedAt:     payment.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	if !keyGenerated {
		record := &model.IdempotencyRecord{
			Key:       idemKey,
			PaymentID: &payment.ID,
			Response:  body,
			ExpiresAt: time.Now().Add(s.cfg.Idempotency.TTL),
		}
		if err := s.idemRepo.CreateWithTx(ctx, tx, record); err != nil {
			if errors.Is(err, model.ErrDuplicateKey) {
				s.txManager.RollbackTx(ctx, tx)
				return s.duplicateKeyResult(ctx, idemKey)
			}
			return nil, err
		}
	}

	if err := s.txManager.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	// Step 4: Post-commit. A lost cue is tolerable: the row stays
	// pending and can be re-triggered.
	if err := s.enqueuer.EnqueueProcessPayment(ctx, payment.ID); err != nil {
		logger.Error("Failed to enqueue payment processing", err)
	}

	if !keyGenerated {
		if err := s.cache.Set(ctx, idempotencyCacheKey(idemKey), body, s.cfg.Idempotency.TTL); err != nil {
			logger.Warn("Failed to cache idempotent response", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Payment created", map[string]interface{}{
		"payment_id":     payment.ID.String(),
		"amount":         payment.Amount.String(),
		"currency":       payment.Currency,
		"customer_email": payment.CustomerEmail,
	})

	return &CreatePaymentResult{
		Body:       body,
		StatusCode: http.StatusCreated,
	}, nil
}

// lookupStoredResponse checks the cache, then the database, for a
// previously stored response body.
func (s *paymentService) lookupStoredResponse(ctx context.Context, key string) ([]byte, bool) {
	var cached []byte
	if hit, err := s.cache.Get(ctx, idempotencyCacheKey(key), &cached); err == nil && hit {
		return cached, true
	}

	record, err := s.idemRepo.Lookup(ctx, key)
	if err != nil {
		if !errors.Is(err, model.ErrIdempotencyNotFound) {
			logger.Warn("Idempotency lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	if err := s.cache.Set(ctx, idempotencyCacheKey(key), record.Response, time.Until(record.ExpiresAt)); err != nil {
		logger.Warn("Failed to cache idempotent response", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return record.Response, true
}

// duplicateKeyResult answers a request whose key already belongs to an
// existing payment.
func (s *paymentService) duplicateKeyResult(ctx context.Context, key string) (*CreatePaymentResult, error) {
	if body, ok := s.lookupStoredResponse(ctx, key); ok {
		return &CreatePaymentResult{
			Body:       body,
			StatusCode: http.StatusOK,
			Replayed:   true,
		}, nil
	}

	existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}

	message := "Payment already exists"
	body, err := marshalEnvelope(model.PaymentResponse{
		ID:            existing.ID,
		Status:        existing.Status,
		Amount:        existing.Amount,
		Currency:      existing.Currency,
		CustomerEmail: existing.CustomerEmail,
		CreatedAt:     existing.CreatedAt,
		Message:       &message,
	})
	if err != nil {
		return nil, err
	}

	return &CreatePaymentResult{
		Body:       body,
		StatusCode: http.StatusOK,
		Replayed:   true,
	}, nil
}

func marshalEnvelope(data interface{}) ([]byte, error) {
	body, err := json.Marshal(response.Response{
		Success: true,
		Data:    data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response body: %w", err)
	}
	return body, nil
}

// =====================================================
// GET / LIST
// =====================================================

func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*model.PaymentDetailResponse, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	refunds, err := s.refundRepo.ListByPaymentID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.PaymentDetailResponse{
		Payment: *payment,
		Refunds: refunds,
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, req *model.ListPaymentsRequest) ([]*model.Payment, int, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, 0, model.NewValidationError(err.Error(), err)
	}

	return s.paymentRepo.List(ctx, req.Status, req.Limit, req.Offset)
}

// =====================================================
// REFUND
// =====================================================

// RequestRefund settles the refund in one transaction: budget check
// under the parent's row lock, refund insert, parent status CAS,
// outbox fan-out, and idempotency record all commit or roll back
// together.
func (s *paymentService) RequestRefund(ctx context.Context, paymentID uuid.UUID, req *model.CreateRefundRequest, idemKey string, keyGenerated bool) (*RefundResult, error) {
	// Step 1: Replay check, same contract as CreatePayment. A client
	// retrying a refund whose response it lost must get the original
	// bytes back, not a second refund.
	if !keyGenerated {
		if body, ok := s.lookupStoredResponse(ctx, idemKey); ok {
			return &RefundResult{
				Body:       body,
				StatusCode: http.StatusOK,
				Replayed:   true,
			}, nil
		}
	}

	// Step 2: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error(), err)
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.RollbackTx(ctx, tx)

	// Step 3: Lock the parent. Concurrent refunds serialize here.
	payment, err := s.paymentRepo.GetForUpdateWithTx(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.IsRefundable() {
		return nil, model.NewInvalidStateError(payment.Status)
	}

	// Step 4: Budget check
	refunded, err := s.refundRepo.SumNonFailedWithTx(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}

	remaining := payment.Amount.Sub(refunded)

	amount := remaining
	if req.Amount != nil {
		amount = *req.Amount
	}

	if amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(remaining) {
		return nil, model.NewRefundExceedsRemainingError(amount.String(), remaining.String())
	}

	// Step 5: Insert the refund
	refund := &model.Refund{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Amount:    amount,
		Reason:    req.Reason,
		Status:    model.RefundStatusProcessed,
	}
	if err := s.refundRepo.CreateWithTx(ctx, tx, refund); err != nil {
		return nil, err
	}

	// Step 6: Move the parent
	target := model.PaymentStatusPartialRefunded
	if refunded.Add(amount).Equal(payment.Amount) {
		target = model.PaymentStatusRefunded
	}
	if err := s.paymentRepo.UpdateStatusCASWithTx(ctx, tx, paymentID, target); err != nil {
		return nil, err
	}

	// Step 7: Outbox fan-out
	data := map[string]interface{}{
		"refund_id":  refund.ID.String(),
		"payment_id": paymentID.String(),
		"amount":     amount.String(),
		"currency":   payment.Currency,
	}
	if req.Reason != nil {
		data["reason"] = *req.Reason
	}

	var eventIDs []uuid.UUID
	for _, eventType := range []string{webhookmodel.EventRefundCreated, webhookmodel.EventRefundProcessed} {
		ids, err := s.outbox.EmitWithTx(ctx, tx, eventType, data)
		if err != nil {
			return nil, err
		}
		eventIDs = append(eventIDs, ids...)
	}

	// Step 8: Store the response bytes under the idempotency key
	body, err := marshalEnvelope(model.RefundResponse{
		ID:            refund.ID,
		PaymentID:     paymentID,
		Amount:        amount,
		Reason:        refund.Reason,
		Status:        refund.Status,
		PaymentStatus: target,
		CreatedAt:     refund.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	if !keyGenerated {
		record := &model.IdempotencyRecord{
			Key:       idemKey,
			PaymentID: &paymentID,
			Response:  body,
			ExpiresAt: time.Now().Add(s.cfg.Idempotency.TTL),
		}
		if err := s.idemRepo.CreateWithTx(ctx, tx, record); err != nil {
			if errors.Is(err, model.ErrDuplicateKey) {
				// Two refund requests raced past the replay check. The
				// loser rolls back and answers with the winner's bytes.
				s.txManager.RollbackTx(ctx, tx)
				if body, ok := s.lookupStoredResponse(ctx, idemKey); ok {
					return &RefundResult{
						Body:       body,
						StatusCode: http.StatusOK,
						Replayed:   true,
					}, nil
				}
			}
			return nil, err
		}
	}

	if err := s.txManager.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	s.enqueueDeliveries(ctx, eventIDs)

	if !keyGenerated {
		if err := s.cache.Set(ctx, idempotencyCacheKey(idemKey), body, s.cfg.Idempotency.TTL); err != nil {
			logger.Warn("Failed to cache idempotent response", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Refund processed", map[string]interface{}{
		"refund_id":      refund.ID.String(),
		"payment_id":     paymentID.String(),
		"amount":         amount.String(),
		"payment_status": target,
	})

	return &RefundResult{
		Body:       body,
		StatusCode: http.StatusCreated,
	}, nil
}

// enqueueDeliveries posts wake-up cues for freshly committed outbox
// rows. Failures are logged, not returned: the poller redelivers.
func (s *paymentService) enqueueDeliveries(ctx context.Context, eventIDs []uuid.UUID) {
	for _, id := range eventIDs {
		if err := s.enqueuer.EnqueueDeliverWebhook(ctx, id, 0); err != nil {
			logger.Warn("Failed to enqueue webhook delivery", map[string]interface{}{
				"event_id": id.String(),
				"error":    err.Error(),
			})
		}
	}
}
