package providers

import (
	"context"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

// HealthStatus values returned by CheckHealth.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnreachable = "unreachable"
)

// Health is the result of a provider health check.
type Health struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// ProviderCategory is a category node as reported by a provider.
type ProviderCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID string `json:"parent_id,omitempty"`
	Level    int    `json:"level"`
}

// ProviderProduct is a catalog item as reported by a provider. Price is the
// raw supplier price; markup is applied by the importer, never here.
type ProviderProduct struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       float64          `json:"price"`
	ImageURL    string           `json:"image_url,omitempty"`
	Images      []string         `json:"images,omitempty"`
	SKU         string           `json:"sku,omitempty"`
	Stock       int              `json:"stock"`
	Variants    []models.Variant `json:"variants,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
	Location    string           `json:"location,omitempty"`
}

// FetchParams selects a product page. Identical (CategoryID, Page, PageSize)
// must return the same page on a stable catalog.
type FetchParams struct {
	Keyword    string
	CategoryID string
	Page       int
	PageSize   int
}

// Provider is the capability contract every supplier integration implements.
// Each operation is independently callable and individually failable; all
// errors except CheckHealth's are typed *Error values.
type Provider interface {
	// Name returns the registry name, e.g. "alibaba".
	Name() string

	// CheckHealth never returns an error; it always reports a status so
	// callers can short-circuit before expensive calls.
	CheckHealth(ctx context.Context) Health

	// GetCategories returns the provider's category taxonomy. It surfaces
	// transport and auth failures as errors; the fallback-to-defaults policy
	// belongs to the catalog importer, not the adapter.
	GetCategories(ctx context.Context) ([]ProviderCategory, error)

	// FetchProducts returns one page of products.
	FetchProducts(ctx context.Context, params FetchParams) ([]ProviderProduct, error)

	// CreateOrder creates a provider-side order for dropship line items.
	CreateOrder(ctx context.Context, order models.DropshipOrderData) (*models.OrderCreationResult, error)

	// CalculateShipping returns a cost/ETA quote. When the logistics endpoint
	// is unavailable it returns a best-effort default with Estimated set
	// instead of failing the checkout path.
	CalculateShipping(ctx context.Context, order models.DropshipOrderData) (models.ShippingInfo, error)

	// UpdateInventory pushes stock levels to the provider. Read-only
	// providers return ErrUnsupported rather than silently no-op.
	UpdateInventory(ctx context.Context, updates []models.InventoryUpdate) error
}
