package providers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
)

// ---- stub provider ----

type stubProvider struct{ name string }

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) CheckHealth(_ context.Context) providers.Health {
	return providers.Health{Status: providers.StatusHealthy}
}
func (s *stubProvider) GetCategories(_ context.Context) ([]providers.ProviderCategory, error) {
	return nil, nil
}
func (s *stubProvider) FetchProducts(_ context.Context, _ providers.FetchParams) ([]providers.ProviderProduct, error) {
	return nil, nil
}
func (s *stubProvider) CreateOrder(_ context.Context, _ models.DropshipOrderData) (*models.OrderCreationResult, error) {
	return nil, nil
}
func (s *stubProvider) CalculateShipping(_ context.Context, _ models.DropshipOrderData) (models.ShippingInfo, error) {
	return models.ShippingInfo{}, nil
}
func (s *stubProvider) UpdateInventory(_ context.Context, _ []models.InventoryUpdate) error {
	return providers.ErrUnsupported
}

// ---- tests ----

func TestRegistry_GetRegistered(t *testing.T) {
	reg := providers.NewRegistry(&stubProvider{name: "alibaba"})

	prov, err := reg.Get("alibaba")
	assert.Nil(t, err)
	assert.Equal(t, "alibaba", prov.Name())
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := providers.NewRegistry()

	_, err := reg.Get("ghost")
	assert.NotNil(t, err)
	assert.Equal(t, providers.KindUnconfigured, providers.KindOf(err))
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := providers.NewRegistry(
		&stubProvider{name: "cjdrop"},
		&stubProvider{name: "alibaba"},
	)
	reg.Register(&stubProvider{name: "banggood"})

	assert.Equal(t, []string{"alibaba", "banggood", "cjdrop"}, reg.Names())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	first := &stubProvider{name: "alibaba"}
	second := &stubProvider{name: "alibaba"}
	reg := providers.NewRegistry(first)
	reg.Register(second)

	prov, err := reg.Get("alibaba")
	assert.Nil(t, err)
	assert.Same(t, second, prov.(*stubProvider))
	assert.Len(t, reg.Names(), 1)
}
