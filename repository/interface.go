package repository

import (
	"context"
	"time"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

// ProductRepository defines the product persistence operations used by the
// importer, reconciler and dispatcher. Implementations are tenant-scoped via
// the tenant_id field on every filter.
type ProductRepository interface {
	// UpsertDropship writes a dropship product keyed by
	// (tenantId, provider, providerProductId). It reports whether a new
	// record was created (false means an existing one was updated).
	UpsertDropship(ctx context.Context, p *models.Product) (created bool, err error)
	// FindDropship pages through dropship products for a tenant, optionally
	// restricted to one provider, oldest-updated first. Records updated at or
	// after updatedBefore are excluded so a reconcile pass never rescans its
	// own writes.
	FindDropship(ctx context.Context, tenantID, provider string, updatedBefore time.Time, limit, offset int) ([]models.Product, error)
	// UpdateInventoryFields overwrites price and inventory on one product.
	UpdateInventoryFields(ctx context.Context, id string, price, listPrice float64, inv models.Inventory) error
	FindByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Product, error)
	CountActiveByCategorySlug(ctx context.Context, tenantID, slug string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// CategoryRepository defines the category persistence operations.
type CategoryRepository interface {
	// UpsertBySlug writes a category keyed by (tenantId, slug), merging
	// external mappings instead of clobbering other providers' entries.
	UpsertBySlug(ctx context.Context, c *models.Category) error
	FindBySlug(ctx context.Context, tenantID, slug string) (*models.Category, error)
	FindAll(ctx context.Context, tenantID string) ([]models.Category, error)
	SetProductCount(ctx context.Context, tenantID, slug string, count int64) error
	EnsureIndexes(ctx context.Context) error
}

// OrderMappingRepository persists external order mappings.
type OrderMappingRepository interface {
	Create(ctx context.Context, m *models.ExternalOrderMapping) error
	FindByInternalOrder(ctx context.Context, tenantID, internalOrderID string) ([]models.ExternalOrderMapping, error)
	// UpdateStatusByExternal is the webhook path: transition the mapping for
	// (provider, externalOrderId) to newStatus.
	UpdateStatusByExternal(ctx context.Context, provider, externalOrderID, newStatus string) error
	EnsureIndexes(ctx context.Context) error
}

// SyncRunRepository tracks per (tenant, provider) sync state.
type SyncRunRepository interface {
	Get(ctx context.Context, tenantID, provider string) (*models.SyncRun, error)
	RecordCategorySync(ctx context.Context, tenantID, provider string, at time.Time, summary *models.SyncSummary) error
	RecordReconcile(ctx context.Context, tenantID, provider string, at time.Time) error
	// ListPairs returns every (tenant, provider) pair that has synced at
	// least once, for the scheduled reconciler.
	ListPairs(ctx context.Context) ([]models.SyncRun, error)
}
