package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

// ---- mock product repository ----

// mockProductRepo keys dropship upserts by (tenant, provider, provider
// product id) like the real collection's unique index does, so idempotency
// behavior can be asserted. Guarded because importer workers run concurrently.
type mockProductRepo struct {
	mu         sync.Mutex
	byKey      map[string]*models.Product
	upsertErr  error
	findPages  [][]models.Product // consumed page by page by FindDropship
	findErr    error
	updateErr  error
	updated    map[string]models.Inventory
	updatedPx  map[string]float64
	findByIDsP []models.Product
	findByErr  error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		byKey:     make(map[string]*models.Product),
		updated:   make(map[string]models.Inventory),
		updatedPx: make(map[string]float64),
	}
}

func dropshipKey(p *models.Product) string {
	return p.TenantID + "/" + p.DropshipProvider + "/" + p.DropshipProductID
}

func (m *mockProductRepo) UpsertDropship(_ context.Context, p *models.Product) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	key := dropshipKey(p)
	_, exists := m.byKey[key]
	cp := *p
	m.byKey[key] = &cp
	return !exists, nil
}

func (m *mockProductRepo) FindDropship(_ context.Context, _, _ string, _ time.Time, _, offset int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if len(m.findPages) == 0 {
		return nil, nil
	}
	page := m.findPages[0]
	m.findPages = m.findPages[1:]
	if offset >= len(page) {
		return nil, nil
	}
	return page[offset:], nil
}

func (m *mockProductRepo) UpdateInventoryFields(_ context.Context, id string, price, _ float64, inv models.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated[id] = inv
	m.updatedPx[id] = price
	return nil
}

func (m *mockProductRepo) FindByIDs(_ context.Context, _ string, _ []string) ([]models.Product, error) {
	return m.findByIDsP, m.findByErr
}

func (m *mockProductRepo) CountActiveByCategorySlug(_ context.Context, tenantID, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.byKey {
		if p.TenantID == tenantID && p.CategorySlug == slug && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepo) EnsureIndexes(_ context.Context) error { return nil }

func (m *mockProductRepo) stored(tenant, provider, providerProductID string) *models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byKey[tenant+"/"+provider+"/"+providerProductID]
}

func (m *mockProductRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

// ---- mock category repository ----

type mockCategoryRepo struct {
	mu        sync.Mutex
	bySlug    map[string]*models.Category
	upsertErr error
	counts    map[string]int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		bySlug: make(map[string]*models.Category),
		counts: make(map[string]int64),
	}
}

func (m *mockCategoryRepo) UpsertBySlug(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if existing, ok := m.bySlug[c.TenantID+"/"+c.Slug]; ok {
		for prov, id := range c.ExternalMappings {
			if existing.ExternalMappings == nil {
				existing.ExternalMappings = make(map[string]string)
			}
			existing.ExternalMappings[prov] = id
		}
		return nil
	}
	cp := *c
	m.bySlug[c.TenantID+"/"+c.Slug] = &cp
	return nil
}

func (m *mockCategoryRepo) FindBySlug(_ context.Context, tenantID, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bySlug[tenantID+"/"+slug], nil
}

func (m *mockCategoryRepo) FindAll(_ context.Context, tenantID string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.bySlug {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) SetProductCount(_ context.Context, tenantID, slug string, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[tenantID+"/"+slug] = count
	return nil
}

func (m *mockCategoryRepo) EnsureIndexes(_ context.Context) error { return nil }

func (m *mockCategoryRepo) get(tenantID, slug string) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bySlug[tenantID+"/"+slug]
}

func (m *mockCategoryRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySlug)
}

// ---- mock order mapping repository ----

type mockMappingRepo struct {
	mu        sync.Mutex
	created   []*models.ExternalOrderMapping
	createErr error
	found     []models.ExternalOrderMapping
	findErr   error
	updateErr error
	updates   []string // "provider/external/status"
}

func (m *mockMappingRepo) Create(_ context.Context, mapping *models.ExternalOrderMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *mapping
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockMappingRepo) FindByInternalOrder(_ context.Context, _, _ string) ([]models.ExternalOrderMapping, error) {
	return m.found, m.findErr
}

func (m *mockMappingRepo) UpdateStatusByExternal(_ context.Context, provider, externalOrderID, newStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, provider+"/"+externalOrderID+"/"+newStatus)
	return nil
}

func (m *mockMappingRepo) EnsureIndexes(_ context.Context) error { return nil }

func (m *mockMappingRepo) byProvider(provider string) *models.ExternalOrderMapping {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.created {
		if c.Provider == provider {
			return c
		}
	}
	return nil
}

// ---- mock sync run repository ----

type mockSyncRunRepo struct {
	mu             sync.Mutex
	categorySyncs  int
	reconciles     int
	lastSummary    *models.SyncSummary
	recordErr      error
	pairs          []models.SyncRun
	listPairsError error
}

func (m *mockSyncRunRepo) Get(_ context.Context, _, _ string) (*models.SyncRun, error) {
	return nil, nil
}

func (m *mockSyncRunRepo) RecordCategorySync(_ context.Context, _, _ string, _ time.Time, summary *models.SyncSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.categorySyncs++
	m.lastSummary = summary
	return nil
}

func (m *mockSyncRunRepo) RecordReconcile(_ context.Context, _, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciles++
	return m.recordErr
}

func (m *mockSyncRunRepo) ListPairs(_ context.Context) ([]models.SyncRun, error) {
	return m.pairs, m.listPairsError
}

// ---- mock provider ----

type mockProvider struct {
	name          string
	health        providers.Health
	categories    []providers.ProviderCategory
	categoriesErr error
	// products per provider category id; paged by FetchParams
	productsByCategory map[string][]providers.ProviderProduct
	// products per keyword lookup (reconciler path)
	productsByKeyword map[string][]providers.ProviderProduct
	fetchErr          error
	fetchErrCategory  string // fetchErr applies only to this category when set
	orderResult       *models.OrderCreationResult
	orderErr          error
	shipping          models.ShippingInfo
	shippingErr       error
	updateInvErr      error
}

func (m *mockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockProvider) CheckHealth(_ context.Context) providers.Health {
	if m.health.Status == "" {
		return providers.Health{Status: providers.StatusHealthy}
	}
	return m.health
}

func (m *mockProvider) GetCategories(_ context.Context) ([]providers.ProviderCategory, error) {
	return m.categories, m.categoriesErr
}

func (m *mockProvider) FetchProducts(_ context.Context, params providers.FetchParams) ([]providers.ProviderProduct, error) {
	if m.fetchErr != nil && (m.fetchErrCategory == "" || m.fetchErrCategory == params.CategoryID) {
		return nil, m.fetchErr
	}
	var items []providers.ProviderProduct
	if params.Keyword != "" {
		items = m.productsByKeyword[params.Keyword]
	} else {
		items = m.productsByCategory[params.CategoryID]
	}
	start := (params.Page - 1) * params.PageSize
	if start >= len(items) {
		return nil, nil
	}
	end := start + params.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (m *mockProvider) CreateOrder(_ context.Context, _ models.DropshipOrderData) (*models.OrderCreationResult, error) {
	return m.orderResult, m.orderErr
}

func (m *mockProvider) CalculateShipping(_ context.Context, _ models.DropshipOrderData) (models.ShippingInfo, error) {
	return m.shipping, m.shippingErr
}

func (m *mockProvider) UpdateInventory(_ context.Context, _ []models.InventoryUpdate) error {
	return m.updateInvErr
}

// ---- mock event publisher ----

type mockPublisher struct {
	mu     sync.Mutex
	events []services.OrderDispatchedEvent
	raw    []interface{}
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, _ string, event interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append(m.raw, event)
	if e, ok := event.(services.OrderDispatchedEvent); ok {
		m.events = append(m.events, e)
	}
	return m.err
}
