package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

// OrderDispatchAPI defines the dispatcher operations the controller uses.
type OrderDispatchAPI interface {
	Dispatch(ctx context.Context, req services.DispatchRequest) (*services.DispatchResult, error)
	Mappings(ctx context.Context, tenantID, internalOrderID string) ([]models.ExternalOrderMapping, error)
}

type OrderController struct {
	dispatcher OrderDispatchAPI
}

func NewOrderController(dispatcher OrderDispatchAPI) *OrderController {
	return &OrderController{dispatcher: dispatcher}
}

// DispatchOrder forwards an internal order's dropship items to their
// providers. Partial submissions return 200 with the per-group breakdown.
func (ctrl *OrderController) DispatchOrder(c *gin.Context) {
	var req services.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := ctrl.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrNoDispatchableItems) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		zap.L().Error("Order dispatch failed", zap.String("order", req.InternalOrderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dispatch order"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderMappings returns the provider-side order mappings for an order.
func (ctrl *OrderController) GetOrderMappings(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	mappings, err := ctrl.dispatcher.Mappings(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		zap.L().Error("Failed to load order mappings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order mappings"})
		return
	}
	if len(mappings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No mappings for order"})
		return
	}
	c.JSON(http.StatusOK, mappings)
}
