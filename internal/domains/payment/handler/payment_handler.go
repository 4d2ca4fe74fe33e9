package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paygate-backend/internal/domains/payment/model"
	"paygate-backend/internal/domains/payment/service"
	"paygate-backend/internal/shared/response"
	"paygate-backend/pkg/logger"
)

// HeaderIdempotencyKey is read from incoming create requests.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyKeyGenerated tells the client the server minted the
// key, so a retry of this request will not replay.
const HeaderIdempotencyKeyGenerated = "X-Idempotency-Key-Generated"

// =====================================================
// PAYMENT HANDLER
// =====================================================
type PaymentHandler struct {
	paymentService service.PaymentServiceInterface
}

func NewPaymentHandler(paymentService service.PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid request body")
		return
	}

	idemKey := c.GetHeader(HeaderIdempotencyKey)
	keyGenerated := idemKey == ""
	if keyGenerated {
		idemKey = uuid.NewString()
		c.Header(HeaderIdempotencyKeyGenerated, idemKey)
	}

	result, err := h.paymentService.CreatePayment(c.Request.Context(), &req, idemKey, keyGenerated)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The stored bytes go out verbatim so replays are byte-identical
	response.Raw(c, result.StatusCode, result.Body)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid payment ID")
		return
	}

	detail, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req model.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid query parameters")
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, payments, &response.Meta{
		Limit:  req.Limit,
		Offset: req.Offset,
		Total:  total,
	})
}

// CreateRefund handles POST /payments/:id/refund
func (h *PaymentHandler) CreateRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid payment ID")
		return
	}

	var req model.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid request body")
		return
	}

	idemKey := c.GetHeader(HeaderIdempotencyKey)
	keyGenerated := idemKey == ""
	if keyGenerated {
		idemKey = uuid.NewString()
		c.Header(HeaderIdempotencyKeyGenerated, idemKey)
	}

	result, err := h.paymentService.RequestRefund(c.Request.Context(), id, &req, idemKey, keyGenerated)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The stored bytes go out verbatim so replays are byte-identical
	response.Raw(c, result.StatusCode, result.Body)
}

// handleError maps domain errors onto HTTP statuses
func (h *PaymentHandler) handleError(c *gin.Context, err error) {
	var paymentErr *model.PaymentError

	switch {
	case errors.Is(err, model.ErrPaymentNotFound):
		response.NotFound(c, model.ErrCodePaymentNotFound, "Payment not found")
	case errors.Is(err, model.ErrRefundNotFound):
		response.NotFound(c, model.ErrCodeRefundNotFound, "Refund not found")
	case errors.Is(err, model.ErrInvalidState), errors.Is(err, model.ErrInvalidTransition):
		if errors.As(err, &paymentErr) {
			response.BadRequest(c, paymentErr.Code, paymentErr.Message)
			return
		}
		response.BadRequest(c, model.ErrCodeInvalidState, err.Error())
	case errors.Is(err, model.ErrRefundExceedsRemaining):
		if errors.As(err, &paymentErr) {
			response.BadRequest(c, paymentErr.Code, paymentErr.Message)
			return
		}
		response.BadRequest(c, model.ErrCodeRefundExceedsLimit, err.Error())
	case errors.As(err, &paymentErr) && paymentErr.Code == model.ErrCodeValidation:
		response.BadRequest(c, paymentErr.Code, paymentErr.Message)
	default:
		logger.Error("Payment handler error", err)
		response.InternalServerError(c, model.ErrCodeInternalError, "Internal server error")
	}
}
