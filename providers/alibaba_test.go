package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
)

// ---- helper ----

func newTestAlibaba(t *testing.T, handler http.Handler) *providers.AlibabaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return providers.NewAlibabaProvider(providers.AlibabaConfig{
		APIKey:    "key-1",
		AppSecret: "secret-1",
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
	}, zap.NewNop())
}

func envelope(data string) string {
	return `{"success":true,"data":` + data + `}`
}

func testOrder() models.DropshipOrderData {
	return models.DropshipOrderData{
		InternalOrderID: "o-1",
		TenantID:        "t1",
		Customer:        models.OrderCustomer{Name: "Ada"},
		ShippingAddress: models.Address{Street1: "1 Main St", City: "SF", State: "CA", PostalCode: "94105", Country: "US"},
		Currency:        "USD",
		Items: []models.DropshipOrderItem{
			{ProviderProductID: "p1", Quantity: 2, UnitPrice: 13.00},
		},
	}
}

// ---- tests ----

func TestAlibabaGetCategories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/category/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.URL.Query().Get("app_key"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		w.Write([]byte(envelope(`{"categories":[
			{"category_id":"100","name":"Consumer Electronics","level":0},
			{"category_id":"110","name":"Phones & Accessories","parent_id":"100","level":1}
		]}`)))
	})
	prov := newTestAlibaba(t, mux)

	cats, err := prov.GetCategories(context.Background())

	assert.Nil(t, err)
	if assert.Len(t, cats, 2) {
		assert.Equal(t, "100", cats[0].ID)
		assert.Equal(t, "consumer-electronics", cats[0].Slug)
		assert.Equal(t, "100", cats[1].ParentID)
		assert.Equal(t, "phones-accessories", cats[1].Slug)
	}
}

func TestAlibabaFetchProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "100", r.URL.Query().Get("category_id"))
		w.Write([]byte(envelope(`{"items":[
			{"item_id":"p1","title":"USB Hub","price":"10.00","stock":7,
			 "skus":[{"sku_id":"s1","price":"10.50","quantity":3,"properties":"color:black"}]},
			{"item_id":"p2","title":"Broken","price":"n/a","stock":1}
		],"total":2}`)))
	})
	prov := newTestAlibaba(t, mux)

	items, err := prov.FetchProducts(context.Background(), providers.FetchParams{
		CategoryID: "100",
		Page:       2,
		PageSize:   10,
	})

	assert.Nil(t, err)
	if assert.Len(t, items, 1) { // the unparseable-price record is skipped
		assert.Equal(t, "p1", items[0].ID)
		assert.Equal(t, 10.00, items[0].Price)
		assert.Equal(t, 7, items[0].Stock)
		if assert.Len(t, items[0].Variants, 1) {
			assert.Equal(t, 10.50, items[0].Variants[0].Price)
		}
	}
}

func TestAlibabaAuthError(t *testing.T) {
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := prov.GetCategories(context.Background())

	assert.NotNil(t, err)
	assert.Equal(t, providers.KindAuth, providers.KindOf(err))
}

func TestAlibabaRateLimited(t *testing.T) {
	var calls int
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := prov.FetchProducts(context.Background(), providers.FetchParams{})

	assert.NotNil(t, err)
	assert.Equal(t, providers.KindRateLimited, providers.KindOf(err))
	assert.True(t, providers.IsRetryable(err))
	assert.Greater(t, calls, 1) // the client retried before giving up
}

func TestAlibabaEnvelopeAuthError(t *testing.T) {
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error_code":"AUTH_TOKEN_EXPIRED","error_msg":"token expired"}`))
	}))

	_, err := prov.GetCategories(context.Background())

	assert.NotNil(t, err)
	assert.Equal(t, providers.KindAuth, providers.KindOf(err))
}

func TestAlibabaCreateOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/order/create", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(envelope(`{"order_id":"ext-123","status":"created"}`)))
	})
	prov := newTestAlibaba(t, mux)

	result, err := prov.CreateOrder(context.Background(), testOrder())

	assert.Nil(t, err)
	assert.Equal(t, "ext-123", result.ExternalOrderID)
	assert.Equal(t, "created", result.Status)
	assert.NotEmpty(t, result.ProviderPayload)
}

func TestAlibabaCreateOrder_EmptyOrderID(t *testing.T) {
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope(`{"status":"created"}`)))
	}))

	_, err := prov.CreateOrder(context.Background(), testOrder())

	assert.NotNil(t, err)
	assert.Equal(t, providers.KindOrder, providers.KindOf(err))
}

func TestAlibabaCalculateShipping(t *testing.T) {
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope(`{"cost":9.50,"currency":"USD","estimated_days":8}`)))
	}))

	info, err := prov.CalculateShipping(context.Background(), testOrder())

	assert.Nil(t, err)
	assert.Equal(t, 9.50, info.Cost)
	assert.Equal(t, "USD", info.Currency)
	assert.False(t, info.Estimated)
	assert.True(t, info.EstimatedDeliveryDate.After(time.Now()))
}

func TestAlibabaCalculateShipping_FallsBackToEstimate(t *testing.T) {
	prov := newTestAlibaba(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	info, err := prov.CalculateShipping(context.Background(), testOrder())

	assert.Nil(t, err) // checkout keeps working on freight outage
	assert.True(t, info.Estimated)
	assert.Greater(t, info.Cost, 0.0)
	assert.Equal(t, "USD", info.Currency)
}

func TestAlibabaCheckHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/system/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	prov := newTestAlibaba(t, mux)

	health := prov.CheckHealth(context.Background())
	assert.Equal(t, providers.StatusHealthy, health.Status)
}

func TestAlibabaUpdateInventoryUnsupported(t *testing.T) {
	prov := newTestAlibaba(t, http.NewServeMux())

	err := prov.UpdateInventory(context.Background(), nil)
	assert.ErrorIs(t, err, providers.ErrUnsupported)
}
