package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/repository"
)

// ImporterConfig tunes a CatalogImporter.
type ImporterConfig struct {
	MarkupFactor float64
	PageSize     int
	MaxPages     int // page limit per category
	Workers      int // concurrent category imports
}

// ImportOptions selects what one sync run covers.
type ImportOptions struct {
	TenantID      string
	Provider      string
	CategorySlugs []string // subset to import products for; empty = first MaxCategories
	MaxCategories int
}

// ImportSummary is the always-returned outcome of a sync run. A run completes
// and reports rather than aborting on per-category failures.
type ImportSummary struct {
	TenantID         string        `json:"tenant_id"`
	Provider         string        `json:"provider"`
	CategoriesSynced int           `json:"categories_synced"`
	Imported         int           `json:"imported"`
	Updated          int           `json:"updated"`
	Failed           int           `json:"failed"`
	FailedCategories []string      `json:"failed_categories,omitempty"`
	FallbackUsed     bool          `json:"fallback_used"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
}

// CatalogImporter synchronizes a tenant's categories and products from a
// provider: category upsert with hierarchy mapping, paged product import with
// markup and idempotent upsert, and denormalized product counts.
type CatalogImporter struct {
	registry   *providers.Registry
	products   repository.ProductRepository
	categories repository.CategoryRepository
	syncRuns   repository.SyncRunRepository
	limiter    *ProviderLimiter
	cfg        ImporterConfig
	events     EventPublisher // nil disables sync events
	logger     *zap.Logger
}

func NewCatalogImporter(
	registry *providers.Registry,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	syncRuns repository.SyncRunRepository,
	limiter *ProviderLimiter,
	cfg ImporterConfig,
	events EventPublisher,
	logger *zap.Logger,
) *CatalogImporter {
	if cfg.MarkupFactor <= 0 {
		cfg.MarkupFactor = DefaultMarkupFactor
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	return &CatalogImporter{
		registry:   registry,
		products:   products,
		categories: categories,
		syncRuns:   syncRuns,
		limiter:    limiter,
		cfg:        cfg,
		events:     events,
		logger:     logger,
	}
}

// CatalogSyncedEvent is published after every sync run, fallback runs
// included.
type CatalogSyncedEvent struct {
	EventType    string    `json:"event_type"` // dropship.sync.completed
	TenantID     string    `json:"tenant_id"`
	Provider     string    `json:"provider"`
	Imported     int       `json:"imported"`
	Updated      int       `json:"updated"`
	Failed       int       `json:"failed"`
	FallbackUsed bool      `json:"fallback_used"`
	Timestamp    time.Time `json:"timestamp"`
}

// importTarget is one category selected for product import.
type importTarget struct {
	Slug               string
	ProviderCategoryID string
}

// SyncCatalog runs a full catalog sync for one tenant and provider. When the
// provider is unconfigured or its category API fails, the tenant gets the
// default category set instead and the run reports FallbackUsed; product
// import is skipped because there is nothing to import against.
func (imp *CatalogImporter) SyncCatalog(ctx context.Context, opts ImportOptions) (*ImportSummary, error) {
	if opts.TenantID == "" || opts.Provider == "" {
		return nil, fmt.Errorf("tenant id and provider are required")
	}
	if opts.MaxCategories <= 0 {
		opts.MaxCategories = 10
	}

	summary := &ImportSummary{
		TenantID:  opts.TenantID,
		Provider:  opts.Provider,
		StartedAt: time.Now().UTC(),
	}

	targets, err := imp.syncCategories(ctx, opts, summary)
	if err != nil {
		return nil, err
	}

	if !summary.FallbackUsed {
		imp.importProducts(ctx, opts, targets, summary)
	}

	summary.Duration = time.Since(summary.StartedAt)
	imp.recordRun(ctx, opts, summary)
	imp.publishSynced(ctx, opts, summary)

	imp.logger.Info("catalog sync completed",
		zap.String("tenant", opts.TenantID),
		zap.String("provider", opts.Provider),
		zap.Int("imported", summary.Imported),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Strings("failed_categories", summary.FailedCategories),
		zap.Bool("fallback", summary.FallbackUsed),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// syncCategories pulls provider categories and upserts them locally, or
// substitutes the default set when the provider cannot deliver any.
func (imp *CatalogImporter) syncCategories(ctx context.Context, opts ImportOptions, summary *ImportSummary) ([]importTarget, error) {
	var provCats []providers.ProviderCategory

	prov, err := imp.registry.Get(opts.Provider)
	if err == nil {
		provCats, err = prov.GetCategories(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		imp.logger.Warn("provider categories unavailable, using default set",
			zap.String("tenant", opts.TenantID),
			zap.String("provider", opts.Provider),
			zap.String("taxonomy_version", DefaultTaxonomyVersion),
			zap.Error(err),
		)
		summary.FallbackUsed = true
		for _, c := range DefaultCategories(opts.TenantID) {
			if err := imp.categories.UpsertBySlug(ctx, &c); err != nil {
				return nil, fmt.Errorf("upsert default category %s: %w", c.Slug, err)
			}
			summary.CategoriesSynced++
		}
		return nil, nil
	}

	locals := mapProviderCategories(opts.TenantID, opts.Provider, provCats)
	targets := make([]importTarget, 0, len(locals))
	for i := range locals {
		if err := imp.categories.UpsertBySlug(ctx, &locals[i]); err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", locals[i].Slug, err)
		}
		summary.CategoriesSynced++
		targets = append(targets, importTarget{
			Slug:               locals[i].Slug,
			ProviderCategoryID: locals[i].ExternalMappings[opts.Provider],
		})
	}
	return selectTargets(targets, opts), nil
}

// mapProviderCategories turns provider category nodes into local records with
// level, path and breadcrumbs recomputed from the parent chain.
func mapProviderCategories(tenantID, provider string, cats []providers.ProviderCategory) []models.Category {
	byID := make(map[string]providers.ProviderCategory, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	slugOf := func(c providers.ProviderCategory) string {
		if c.Slug != "" {
			return c.Slug
		}
		return models.Slugify(c.Name)
	}

	// chain returns the ancestors of c from root to direct parent. A broken
	// or cyclic parent reference terminates the walk instead of recursing
	// forever.
	chain := func(c providers.ProviderCategory) []providers.ProviderCategory {
		var ancestors []providers.ProviderCategory
		seen := map[string]bool{c.ID: true}
		cur := c
		for cur.ParentID != "" && !seen[cur.ParentID] {
			parent, ok := byID[cur.ParentID]
			if !ok {
				break
			}
			seen[parent.ID] = true
			ancestors = append([]providers.ProviderCategory{parent}, ancestors...)
			cur = parent
		}
		return ancestors
	}

	// Providers do not guarantee parents before children, so nodes are
	// processed shallowest-first to have every parent ID resolved before its
	// children look it up.
	ordered := make([]providers.ProviderCategory, len(cats))
	copy(ordered, cats)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(chain(ordered[i])) < len(chain(ordered[j]))
	})

	slugToID := make(map[string]string, len(cats))
	out := make([]models.Category, 0, len(cats))
	for _, c := range ordered {
		ancestors := chain(c)
		slug := slugOf(c)

		path := slug
		breadcrumbs := make([]string, 0, len(ancestors))
		pathParts := make([]string, 0, len(ancestors)+1)
		for _, a := range ancestors {
			breadcrumbs = append(breadcrumbs, a.Name)
			pathParts = append(pathParts, slugOf(a))
		}
		if len(pathParts) > 0 {
			path = ""
			for _, p := range pathParts {
				path += p + "/"
			}
			path += slug
		}

		local := models.Category{
			ID:               uuid.NewString(),
			TenantID:         tenantID,
			Name:             c.Name,
			Slug:             slug,
			Level:            len(ancestors),
			Path:             path,
			Breadcrumbs:      breadcrumbs,
			IsActive:         true,
			Source:           models.CategorySourceProvider,
			ExternalMappings: map[string]string{provider: c.ID},
		}
		if len(ancestors) > 0 {
			parentSlug := slugOf(ancestors[len(ancestors)-1])
			if pid, ok := slugToID[parentSlug]; ok {
				parentID := pid
				local.ParentID = &parentID
			}
		}
		slugToID[slug] = local.ID
		out = append(out, local)
	}
	return out
}

// selectTargets applies the caller's category subset, or caps at the first
// MaxCategories in provider order.
func selectTargets(targets []importTarget, opts ImportOptions) []importTarget {
	if len(opts.CategorySlugs) > 0 {
		wanted := make(map[string]bool, len(opts.CategorySlugs))
		for _, s := range opts.CategorySlugs {
			wanted[s] = true
		}
		filtered := targets[:0]
		for _, t := range targets {
			if wanted[t.Slug] {
				filtered = append(filtered, t)
			}
		}
		return filtered
	}
	if len(targets) > opts.MaxCategories {
		return targets[:opts.MaxCategories]
	}
	return targets
}

// importProducts fans category imports out over a bounded worker pool. One
// category failing never aborts the run; it lands in FailedCategories.
func (imp *CatalogImporter) importProducts(ctx context.Context, opts ImportOptions, targets []importTarget, summary *ImportSummary) {
	jobs := make(chan importTarget)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < imp.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				imported, updated, failed, err := imp.importCategory(ctx, opts, target)
				mu.Lock()
				summary.Imported += imported
				summary.Updated += updated
				summary.Failed += failed
				if err != nil {
					summary.FailedCategories = append(summary.FailedCategories, target.Slug)
					imp.logger.Warn("category import failed",
						zap.String("tenant", opts.TenantID),
						zap.String("provider", opts.Provider),
						zap.String("category", target.Slug),
						zap.Error(err),
					)
				}
				mu.Unlock()
			}
		}()
	}

	for _, t := range targets {
		select {
		case <-ctx.Done():
			// Cancellation stops scheduling further categories; in-flight
			// upserts are individually atomic and finish on their own.
			close(jobs)
			wg.Wait()
			return
		case jobs <- t:
		}
	}
	close(jobs)
	wg.Wait()
}

// importCategory pages through one provider category, transforming and
// upserting each product. Provider calls go through the shared per
// (tenant, provider) rate limiter.
func (imp *CatalogImporter) importCategory(ctx context.Context, opts ImportOptions, target importTarget) (imported, updated, failed int, err error) {
	prov, err := imp.registry.Get(opts.Provider)
	if err != nil {
		return 0, 0, 0, err
	}

	for page := 1; page <= imp.cfg.MaxPages; page++ {
		if err := imp.limiter.Wait(ctx, opts.TenantID, opts.Provider); err != nil {
			return imported, updated, failed, err
		}

		items, err := prov.FetchProducts(ctx, providers.FetchParams{
			CategoryID: target.ProviderCategoryID,
			Page:       page,
			PageSize:   imp.cfg.PageSize,
		})
		if err != nil {
			return imported, updated, failed, err
		}

		for _, item := range items {
			product, terr := imp.transform(opts.TenantID, opts.Provider, target.Slug, item)
			if terr != nil {
				failed++
				imp.logger.Warn("skipping malformed provider product",
					zap.String("provider", opts.Provider),
					zap.String("item_id", item.ID),
					zap.Error(terr),
				)
				continue
			}
			created, uerr := imp.products.UpsertDropship(ctx, product)
			if uerr != nil {
				failed++
				imp.logger.Error("product upsert failed",
					zap.String("sku", product.SKU),
					zap.Error(uerr),
				)
				continue
			}
			if created {
				imported++
			} else {
				updated++
			}
		}

		if len(items) < imp.cfg.PageSize {
			break
		}
	}

	// Denormalized count is recomputed from the store rather than
	// incremented, so concurrent imports into a shared category cannot lose
	// updates.
	count, cerr := imp.products.CountActiveByCategorySlug(ctx, opts.TenantID, target.Slug)
	if cerr == nil {
		cerr = imp.categories.SetProductCount(ctx, opts.TenantID, target.Slug, count)
	}
	if cerr != nil {
		imp.logger.Warn("product count refresh failed",
			zap.String("category", target.Slug),
			zap.Error(cerr),
		)
	}

	return imported, updated, failed, nil
}

// transform maps a provider product onto the local catalog shape, applying
// markup. The supplier price is never stored unmarked.
func (imp *CatalogImporter) transform(tenantID, provider, categorySlug string, pp providers.ProviderProduct) (*models.Product, error) {
	if pp.ID == "" {
		return nil, fmt.Errorf("provider product without id")
	}
	if pp.Price < 0 {
		return nil, fmt.Errorf("provider product %s has negative price", pp.ID)
	}

	price := ApplyMarkup(pp.Price, imp.cfg.MarkupFactor)

	return &models.Product{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		Name:              pp.Name,
		Slug:              models.Slugify(pp.Name) + "-" + models.Slugify(pp.ID),
		Description:       pp.Description,
		Price:             price,
		ListPrice:         price,
		CategorySlug:      categorySlug,
		SKU:               DropshipSKU(provider, pp.ID),
		Images:            pp.Images,
		Inventory:         models.Inventory{Quantity: pp.Stock, LowStockThreshold: 5, InStock: pp.Stock > 0},
		IsActive:          true,
		IsDropship:        true,
		DropshipProvider:  provider,
		DropshipProductID: pp.ID,
		Tags:              []string{"dropship", provider},
		Variants:          pp.Variants,
	}, nil
}

func (imp *CatalogImporter) recordRun(ctx context.Context, opts ImportOptions, summary *ImportSummary) {
	persisted := &models.SyncSummary{
		Imported:         summary.Imported,
		Updated:          summary.Updated,
		Failed:           summary.Failed,
		FailedCategories: summary.FailedCategories,
		FallbackUsed:     summary.FallbackUsed,
		DurationMs:       summary.Duration.Milliseconds(),
	}
	if err := imp.syncRuns.RecordCategorySync(ctx, opts.TenantID, opts.Provider, summary.StartedAt, persisted); err != nil {
		imp.logger.Warn("failed to record sync run",
			zap.String("tenant", opts.TenantID),
			zap.String("provider", opts.Provider),
			zap.Error(err),
		)
	}
}

func (imp *CatalogImporter) publishSynced(ctx context.Context, opts ImportOptions, summary *ImportSummary) {
	if imp.events == nil {
		return
	}
	event := CatalogSyncedEvent{
		EventType:    "dropship.sync.completed",
		TenantID:     opts.TenantID,
		Provider:     opts.Provider,
		Imported:     summary.Imported,
		Updated:      summary.Updated,
		Failed:       summary.Failed,
		FallbackUsed: summary.FallbackUsed,
		Timestamp:    time.Now().UTC(),
	}
	if err := imp.events.Publish(ctx, opts.TenantID+"/"+opts.Provider, event); err != nil {
		imp.logger.Warn("sync event publish failed", zap.Error(err))
	}
}
