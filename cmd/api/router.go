package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate-backend/internal/shared"
	"paygate-backend/internal/shared/middleware"
	"paygate-backend/internal/shared/response"
	"paygate-backend/pkg/container"
)

// SetupRouter wires middleware and routes against the container.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// ========================================
	// GLOBAL MIDDLEWARE
	// ========================================
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	// ========================================
	// HEALTH CHECKS
	// ========================================
	router.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
		})
	})

	router.GET("/health/db", func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/redis", func(ctx *gin.Context) {
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "REDIS_UNAVAILABLE", err.Error())
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	// ========================================
	// PAYMENT ROUTES
	// ========================================
	payments := router.Group("/payments")
	{
		payments.POST("", c.PaymentHandler.CreatePayment)
		payments.GET("", c.PaymentHandler.ListPayments)
		payments.GET("/:id", c.PaymentHandler.GetPayment)
		payments.POST("/:id/refund", c.PaymentHandler.CreateRefund)
	}

	// ========================================
	// WEBHOOK SUBSCRIPTION ROUTES
	// ========================================
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("", c.WebhookHandler.CreateSubscription)
		webhooks.GET("", c.WebhookHandler.ListSubscriptions)
		webhooks.GET("/:id", c.WebhookHandler.GetSubscription)
		webhooks.PATCH("/:id", c.WebhookHandler.UpdateSubscription)
		webhooks.DELETE("/:id", c.WebhookHandler.DeleteSubscription)
		webhooks.GET("/:id/events", c.WebhookHandler.ListEvents)
	}

	// ========================================
	// TEST / INTROSPECTION ROUTES
	// ========================================
	// Queue depth snapshot for integration tests waiting on async work
	router.GET("/test/jobs/status", func(ctx *gin.Context) {
		queues := gin.H{}
		for _, queueName := range []string{shared.QueuePayments, shared.QueueWebhooks} {
			info, err := c.Inspector.GetQueueInfo(queueName)
			if err != nil {
				// A queue that has never seen a task does not exist yet
				queues[queueName] = gin.H{"pending": 0, "active": 0, "scheduled": 0, "retry": 0}
				continue
			}
			queues[queueName] = gin.H{
				"pending":   info.Pending,
				"active":    info.Active,
				"scheduled": info.Scheduled,
				"retry":     info.Retry,
				"completed": info.Completed,
				"failed":    info.Failed,
			}
		}
		response.Success(ctx, http.StatusOK, gin.H{"queues": queues})
	})

	return router
}
