package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

// OrderStatusUpdater is the dispatcher entry point the webhook handler calls.
type OrderStatusUpdater interface {
	UpdateExternalOrderStatus(ctx context.Context, provider, externalOrderID, newStatus string) error
}

type WebhookController struct {
	updater OrderStatusUpdater
}

func NewWebhookController(updater OrderStatusUpdater) *WebhookController {
	return &WebhookController{updater: updater}
}

type orderStatusWebhook struct {
	ExternalOrderID string `json:"external_order_id" binding:"required"`
	Status          string `json:"status" binding:"required"`
}

// OrderStatus handles asynchronous order-status pushes from a provider.
func (ctrl *WebhookController) OrderStatus(c *gin.Context) {
	provider := c.Param("provider")

	var payload orderStatusWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload", "details": err.Error()})
		return
	}

	err := ctrl.updater.UpdateExternalOrderStatus(c.Request.Context(), provider, payload.ExternalOrderID, payload.Status)
	if err != nil {
		if errors.Is(err, services.ErrUnknownStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No mapping for external order"})
			return
		}
		zap.L().Error("Webhook status update failed",
			zap.String("provider", provider),
			zap.String("external_order_id", payload.ExternalOrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
