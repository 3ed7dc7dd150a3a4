package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/repository"
)

// ReconcileSummary reports one reconciliation pass. Skipped products keep
// their stale data; stale-but-present beats destructive failure.
type ReconcileSummary struct {
	TenantID   string        `json:"tenant_id"`
	Provider   string        `json:"provider"`
	Checked    int           `json:"checked"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	SkippedIDs []string      `json:"skipped_ids,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// InventoryReconciler re-queries providers for previously imported products
// and refreshes price and stock in place.
type InventoryReconciler struct {
	registry *providers.Registry
	products repository.ProductRepository
	syncRuns repository.SyncRunRepository
	limiter  *ProviderLimiter
	markup   float64
	pageSize int
	logger   *zap.Logger
}

func NewInventoryReconciler(
	registry *providers.Registry,
	products repository.ProductRepository,
	syncRuns repository.SyncRunRepository,
	limiter *ProviderLimiter,
	markupFactor float64,
	pageSize int,
	logger *zap.Logger,
) *InventoryReconciler {
	if markupFactor <= 0 {
		markupFactor = DefaultMarkupFactor
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return &InventoryReconciler{
		registry: registry,
		products: products,
		syncRuns: syncRuns,
		limiter:  limiter,
		markup:   markupFactor,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Reconcile refreshes every dropship product of the tenant for one provider.
// Products whose provider lookup fails are skipped and reported, never zeroed
// or deleted. The pass pages by oldest-updated-first with the run start as an
// exclusive upper bound, so its own writes are never rescanned.
func (r *InventoryReconciler) Reconcile(ctx context.Context, tenantID, provider string) (*ReconcileSummary, error) {
	if tenantID == "" || provider == "" {
		return nil, fmt.Errorf("tenant id and provider are required")
	}

	prov, err := r.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	// Cheap short-circuit before a potentially long pass.
	if health := prov.CheckHealth(ctx); health.Status == providers.StatusUnreachable {
		return nil, providers.NewError(provider, providers.KindUnreachable,
			"provider unreachable, skipping reconciliation: "+health.Details, nil)
	}

	summary := &ReconcileSummary{
		TenantID:  tenantID,
		Provider:  provider,
		StartedAt: time.Now().UTC(),
	}

	for {
		// Updated products move past the upper bound, so page one always
		// holds the next unprocessed batch; only skipped products need the
		// offset to not be refetched forever.
		batch, err := r.products.FindDropship(ctx, tenantID, provider, summary.StartedAt, r.pageSize, summary.Skipped)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			r.reconcileProduct(ctx, prov, &batch[i], summary)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	if err := r.syncRuns.RecordReconcile(ctx, tenantID, provider, summary.StartedAt); err != nil {
		r.logger.Warn("failed to record reconcile run",
			zap.String("tenant", tenantID),
			zap.String("provider", provider),
			zap.Error(err),
		)
	}

	r.logger.Info("inventory reconciliation completed",
		zap.String("tenant", tenantID),
		zap.String("provider", provider),
		zap.Int("checked", summary.Checked),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (r *InventoryReconciler) reconcileProduct(ctx context.Context, prov providers.Provider, product *models.Product, summary *ReconcileSummary) {
	summary.Checked++

	if err := r.limiter.Wait(ctx, product.TenantID, product.DropshipProvider); err != nil {
		summary.Skipped++
		summary.SkippedIDs = append(summary.SkippedIDs, product.DropshipProductID)
		return
	}

	items, err := prov.FetchProducts(ctx, providers.FetchParams{
		Keyword:  product.DropshipProductID,
		Page:     1,
		PageSize: 1,
	})
	if err != nil || len(items) == 0 {
		summary.Skipped++
		summary.SkippedIDs = append(summary.SkippedIDs, product.DropshipProductID)
		r.logger.Warn("provider lookup failed, keeping stale product data",
			zap.String("provider", product.DropshipProvider),
			zap.String("item_id", product.DropshipProductID),
			zap.Error(err),
		)
		return
	}

	// Keyword search is not guaranteed exact; only an item whose ID matches
	// the tracked provider product may overwrite local price and stock.
	var fresh *providers.ProviderProduct
	for i := range items {
		if items[i].ID == product.DropshipProductID {
			fresh = &items[i]
			break
		}
	}
	if fresh == nil {
		summary.Skipped++
		summary.SkippedIDs = append(summary.SkippedIDs, product.DropshipProductID)
		r.logger.Warn("provider lookup returned a different product, keeping stale data",
			zap.String("provider", product.DropshipProvider),
			zap.String("item_id", product.DropshipProductID),
		)
		return
	}

	price := ApplyMarkup(fresh.Price, r.markup)
	inv := models.Inventory{
		Quantity:          fresh.Stock,
		LowStockThreshold: product.Inventory.LowStockThreshold,
		InStock:           fresh.Stock > 0,
	}
	if err := r.products.UpdateInventoryFields(ctx, product.ID, price, price, inv); err != nil {
		summary.Skipped++
		summary.SkippedIDs = append(summary.SkippedIDs, product.DropshipProductID)
		r.logger.Error("inventory update failed",
			zap.String("product", product.ID),
			zap.Error(err),
		)
		return
	}
	summary.Updated++
}

// SupportsInventoryPush reports whether the provider accepts inventory
// updates, distinguishing read-only providers from misconfigured ones.
func (r *InventoryReconciler) SupportsInventoryPush(ctx context.Context, provider string) (bool, error) {
	prov, err := r.registry.Get(provider)
	if err != nil {
		return false, err
	}
	err = prov.UpdateInventory(ctx, nil)
	if errors.Is(err, providers.ErrUnsupported) {
		return false, nil
	}
	return true, err
}
