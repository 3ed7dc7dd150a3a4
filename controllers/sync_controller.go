package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

// CatalogSyncAPI defines the importer operations the controller uses.
type CatalogSyncAPI interface {
	SyncCatalog(ctx context.Context, opts services.ImportOptions) (*services.ImportSummary, error)
}

// ReconcileAPI defines the reconciler operations the controller uses.
type ReconcileAPI interface {
	Reconcile(ctx context.Context, tenantID, provider string) (*services.ReconcileSummary, error)
}

// SyncQueueAPI defines the async job queue operations the controller uses.
type SyncQueueAPI interface {
	Enqueue(ctx context.Context, job *services.SyncJob) (string, error)
	GetJob(ctx context.Context, id string) (*services.SyncJob, error)
}

type SyncController struct {
	importer   CatalogSyncAPI
	reconciler ReconcileAPI
	queue      SyncQueueAPI // nil when redis is not configured
}

func NewSyncController(importer CatalogSyncAPI, reconciler ReconcileAPI, queue SyncQueueAPI) *SyncController {
	return &SyncController{importer: importer, reconciler: reconciler, queue: queue}
}

type catalogSyncRequest struct {
	TenantID      string   `json:"tenant_id" binding:"required"`
	Provider      string   `json:"provider" binding:"required"`
	CategorySlugs []string `json:"category_slugs"`
	MaxCategories int      `json:"max_categories" binding:"omitempty,min=1"`
}

type reconcileRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	Provider string `json:"provider" binding:"required"`
}

// EnqueueCatalogSync queues an async catalog sync and returns the job id.
func (ctrl *SyncController) EnqueueCatalogSync(c *gin.Context) {
	if ctrl.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async sync is not available, use /sync/catalog/run"})
		return
	}

	var req catalogSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	job := &services.SyncJob{
		TenantID:      req.TenantID,
		Provider:      req.Provider,
		CategorySlugs: req.CategorySlugs,
		MaxCategories: req.MaxCategories,
	}
	id, err := ctrl.queue.Enqueue(c.Request.Context(), job)
	if err != nil {
		zap.L().Error("Failed to enqueue sync job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue sync job"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": services.JobStatusQueued})
}

// GetSyncJob returns the state of an async sync job.
func (ctrl *SyncController) GetSyncJob(c *gin.Context) {
	if ctrl.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async sync is not available"})
		return
	}

	job, err := ctrl.queue.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sync job not found"})
			return
		}
		zap.L().Error("Failed to load sync job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sync job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// RunCatalogSync performs a synchronous catalog sync, returning the summary.
func (ctrl *SyncController) RunCatalogSync(c *gin.Context) {
	var req catalogSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	summary, err := ctrl.importer.SyncCatalog(c.Request.Context(), services.ImportOptions{
		TenantID:      req.TenantID,
		Provider:      req.Provider,
		CategorySlugs: req.CategorySlugs,
		MaxCategories: req.MaxCategories,
	})
	if err != nil {
		zap.L().Error("Catalog sync failed", zap.String("tenant", req.TenantID), zap.Error(err))
		c.JSON(providerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RunInventoryReconcile triggers an inventory reconciliation pass.
func (ctrl *SyncController) RunInventoryReconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	summary, err := ctrl.reconciler.Reconcile(c.Request.Context(), req.TenantID, req.Provider)
	if err != nil {
		zap.L().Error("Inventory reconciliation failed", zap.String("tenant", req.TenantID), zap.Error(err))
		c.JSON(providerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// providerErrorStatus maps typed provider errors to HTTP statuses.
func providerErrorStatus(err error) int {
	switch providers.KindOf(err) {
	case providers.KindUnconfigured:
		return http.StatusServiceUnavailable
	case providers.KindUnreachable, providers.KindRateLimited, providers.KindAuth:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
