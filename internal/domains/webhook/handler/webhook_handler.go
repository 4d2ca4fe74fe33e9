package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paygate-backend/internal/domains/webhook/model"
	"paygate-backend/internal/domains/webhook/service"
	"paygate-backend/internal/shared/response"
	"paygate-backend/pkg/logger"
)

// =====================================================
// WEBHOOK HANDLER
// =====================================================
type WebhookHandler struct {
	subscriptionService service.SubscriptionServiceInterface
}

func NewWebhookHandler(subscriptionService service.SubscriptionServiceInterface) *WebhookHandler {
	return &WebhookHandler{subscriptionService: subscriptionService}
}

// CreateSubscription handles POST /webhooks
func (h *WebhookHandler) CreateSubscription(c *gin.Context) {
	var req model.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid request body")
		return
	}

	sub, err := h.subscriptionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /webhooks
func (h *WebhookHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptionService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, subs)
}

// GetSubscription handles GET /webhooks/:id
func (h *WebhookHandler) GetSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid subscription ID")
		return
	}

	sub, err := h.subscriptionService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

// UpdateSubscription handles PATCH /webhooks/:id
func (h *WebhookHandler) UpdateSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid subscription ID")
		return
	}

	var req model.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid request body")
		return
	}

	sub, err := h.subscriptionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /webhooks/:id
func (h *WebhookHandler) DeleteSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid subscription ID")
		return
	}

	if err := h.subscriptionService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":      id,
		"deleted": true,
	})
}

// ListEvents handles GET /webhooks/:id/events
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid subscription ID")
		return
	}

	var req model.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, model.ErrCodeValidation, "Invalid query parameters")
		return
	}

	events, total, err := h.subscriptionService.ListEvents(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, events, &response.Meta{
		Limit:  req.Limit,
		Offset: req.Offset,
		Total:  total,
	})
}

// handleError maps domain errors onto HTTP statuses
func (h *WebhookHandler) handleError(c *gin.Context, err error) {
	var webhookErr *model.WebhookError

	switch {
	case errors.Is(err, model.ErrSubscriptionNotFound):
		response.NotFound(c, model.ErrCodeSubscriptionNotFound, "Webhook subscription not found")
	case errors.Is(err, model.ErrEventNotFound):
		response.NotFound(c, model.ErrCodeEventNotFound, "Webhook event not found")
	case errors.As(err, &webhookErr) && webhookErr.Code == model.ErrCodeValidation:
		response.BadRequest(c, webhookErr.Code, webhookErr.Message)
	default:
		logger.Error("Webhook handler error", err)
		response.InternalServerError(c, model.ErrCodeInternalError, "Internal server error")
	}
}
