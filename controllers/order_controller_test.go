package controllers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/controllers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

// ---- mock dispatcher ----

type mockDispatcher struct {
	result      *services.DispatchResult
	dispatchErr error
	mappings    []models.ExternalOrderMapping
	mappingsErr error
	statusErr   error
	lastStatus  string
}

func (m *mockDispatcher) Dispatch(_ context.Context, _ services.DispatchRequest) (*services.DispatchResult, error) {
	return m.result, m.dispatchErr
}

func (m *mockDispatcher) Mappings(_ context.Context, _, _ string) ([]models.ExternalOrderMapping, error) {
	return m.mappings, m.mappingsErr
}

func (m *mockDispatcher) UpdateExternalOrderStatus(_ context.Context, _, _, newStatus string) error {
	m.lastStatus = newStatus
	return m.statusErr
}

// ---- helpers ----

func setupOrderRouter(d *mockDispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	oc := controllers.NewOrderController(d)
	wc := controllers.NewWebhookController(d)

	r.POST("/orders/dispatch", oc.DispatchOrder)
	r.GET("/orders/:id/mappings", oc.GetOrderMappings)
	r.POST("/webhooks/:provider/orders", wc.OrderStatus)
	return r
}

func validDispatchBody() gin.H {
	return gin.H{
		"tenant_id":         "t1",
		"internal_order_id": "o-1",
		"items":             []gin.H{{"product_id": "id-1", "quantity": 1}},
	}
}

// ---- tests ----

func TestDispatchOrder_Success(t *testing.T) {
	d := &mockDispatcher{result: &services.DispatchResult{
		InternalOrderID: "o-1",
		Submitted:       1,
		Groups:          []services.GroupResult{{Provider: "alibaba", Status: models.MappingStatusSubmitted}},
	}}
	r := setupOrderRouter(d)

	w := postJSON(r, "/orders/dispatch", validDispatchBody())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alibaba")
}

func TestDispatchOrder_NoDropshipItems(t *testing.T) {
	d := &mockDispatcher{dispatchErr: fmt.Errorf("order o-1 has no dropship items: %w", services.ErrNoDispatchableItems)}
	r := setupOrderRouter(d)

	w := postJSON(r, "/orders/dispatch", validDispatchBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchOrder_InvalidBody(t *testing.T) {
	r := setupOrderRouter(&mockDispatcher{})

	w := postJSON(r, "/orders/dispatch", gin.H{"tenant_id": "t1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderMappings(t *testing.T) {
	d := &mockDispatcher{mappings: []models.ExternalOrderMapping{
		{Provider: "alibaba", ExternalOrderID: "ext-1", Status: models.MappingStatusSubmitted},
	}}
	r := setupOrderRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1/mappings?tenant_id=t1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ext-1")
}

func TestGetOrderMappings_RequiresTenant(t *testing.T) {
	r := setupOrderRouter(&mockDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1/mappings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderMappings_NotFound(t *testing.T) {
	r := setupOrderRouter(&mockDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1/mappings?tenant_id=t1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderStatusWebhook_Success(t *testing.T) {
	d := &mockDispatcher{}
	r := setupOrderRouter(d)

	w := postJSON(r, "/webhooks/alibaba/orders", gin.H{
		"external_order_id": "ext-1",
		"status":            "shipped",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", d.lastStatus)
}

func TestOrderStatusWebhook_UnknownStatus(t *testing.T) {
	d := &mockDispatcher{statusErr: fmt.Errorf("%w %q", services.ErrUnknownStatus, "teleported")}
	r := setupOrderRouter(d)

	w := postJSON(r, "/webhooks/alibaba/orders", gin.H{
		"external_order_id": "ext-1",
		"status":            "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderStatusWebhook_NoMapping(t *testing.T) {
	d := &mockDispatcher{statusErr: fmt.Errorf("no mapping for alibaba order ext-9: %w", mongo.ErrNoDocuments)}
	r := setupOrderRouter(d)

	w := postJSON(r, "/webhooks/alibaba/orders", gin.H{
		"external_order_id": "ext-9",
		"status":            "shipped",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
