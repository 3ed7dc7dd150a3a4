package services

import (
	"context"
	"errors"
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

var (
	// ErrNoDispatchableItems means the order carries no dropship line items.
	ErrNoDispatchableItems = errors.New("no dispatchable dropship items")

	// ErrUnknownStatus means a webhook pushed a status outside the mapping
	// lifecycle.
	ErrUnknownStatus = errors.New("unknown order status")
)

// EventPublisher publishes best-effort integration events. Nil-safe at call
// sites: a dispatcher without a publisher simply skips events.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

// DispatchItem references an internal product on an order being dispatched.
type DispatchItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// DispatchRequest is an internal order handed to the dispatcher.
type DispatchRequest struct {
	TenantID        string               `json:"tenant_id" binding:"required"`
	InternalOrderID string               `json:"internal_order_id" binding:"required"`
	Customer        models.OrderCustomer `json:"customer"`
	ShippingAddress models.Address       `json:"shipping_address"`
	Currency        string               `json:"currency"`
	Items           []DispatchItem       `json:"items" binding:"required,dive"`
}

// GroupResult is the outcome for one provider group of the order.
type GroupResult struct {
	Provider        string              `json:"provider"`
	Status          string              `json:"status"` // submitted | failed
	ExternalOrderID string              `json:"external_order_id,omitempty"`
	Shipping        models.ShippingInfo `json:"shipping"`
	Error           string              `json:"error,omitempty"`
}

// DispatchResult is the per-provider breakdown of a dispatch. A multi-supplier
// order can be partially submitted.
type DispatchResult struct {
	InternalOrderID string        `json:"internal_order_id"`
	Groups          []GroupResult `json:"groups"`
	Submitted       int           `json:"submitted"`
	Failed          int           `json:"failed"`
}

// OrderDispatchedEvent is published per provider group after dispatch.
type OrderDispatchedEvent struct {
	EventType       string    `json:"event_type"` // dropship.order.submitted | dropship.order.failed
	TenantID        string    `json:"tenant_id"`
	InternalOrderID string    `json:"internal_order_id"`
	Provider        string    `json:"provider"`
	ExternalOrderID string    `json:"external_order_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// OrderDispatcher groups an internal order's dropship line items by provider
// and creates provider-side orders, recording the external mapping per group.
type OrderDispatcher struct {
	registry *providers.Registry
	products repository.ProductRepository
	mappings repository.OrderMappingRepository
	events   EventPublisher
	logger   *zap.Logger
}

func NewOrderDispatcher(
	registry *providers.Registry,
	products repository.ProductRepository,
	mappings repository.OrderMappingRepository,
	events EventPublisher,
	logger *zap.Logger,
) *OrderDispatcher {
	return &OrderDispatcher{
		registry: registry,
		products: products,
		mappings: mappings,
		events:   events,
		logger:   logger,
	}
}

// Dispatch submits the order's dropship items to their providers. Provider
// groups are independent: a failure in one group never blocks submission of
// the others.
func (d *OrderDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order %s has no items: %w", req.InternalOrderID, ErrNoDispatchableItems)
	}

	groups, err := d.groupByProvider(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("order %s has no dropship items: %w", req.InternalOrderID, ErrNoDispatchableItems)
	}

	result := &DispatchResult{InternalOrderID: req.InternalOrderID}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for provider, order := range groups {
		wg.Add(1)
		go func(provider string, order models.DropshipOrderData) {
			defer wg.Done()
			gr := d.dispatchGroup(ctx, provider, order)
			mu.Lock()
			result.Groups = append(result.Groups, gr)
			if gr.Status == models.MappingStatusSubmitted {
				result.Submitted++
			} else {
				result.Failed++
			}
			mu.Unlock()
		}(provider, order)
	}
	wg.Wait()

	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Provider < result.Groups[j].Provider
	})
	return result, nil
}

// groupByProvider resolves the order's items against the catalog and buckets
// the dropship-flagged ones into one provider order payload each.
func (d *OrderDispatcher) groupByProvider(ctx context.Context, req DispatchRequest) (map[string]models.DropshipOrderData, error) {
	ids := make([]string, 0, len(req.Items))
	qty := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
		qty[item.ProductID] += item.Quantity
	}

	catalog, err := d.products.FindByIDs(ctx, req.TenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve order products: %w", err)
	}

	groups := make(map[string]models.DropshipOrderData)
	for _, p := range catalog {
		if !p.IsDropship || p.DropshipProvider == "" {
			continue
		}
		order, ok := groups[p.DropshipProvider]
		if !ok {
			order = models.DropshipOrderData{
				InternalOrderID: req.InternalOrderID,
				TenantID:        req.TenantID,
				Customer:        req.Customer,
				ShippingAddress: req.ShippingAddress,
				Currency:        req.Currency,
			}
		}
		order.Items = append(order.Items, models.DropshipOrderItem{
			ProductID:         p.ID,
			ProviderProductID: p.DropshipProductID,
			SKU:               p.SKU,
			Name:              p.Name,
			Quantity:          qty[p.ID],
			UnitPrice:         p.Price,
		})
		groups[p.DropshipProvider] = order
	}
	return groups, nil
}

// dispatchGroup quotes shipping and creates the provider-side order for one
// group, persisting the external mapping either way.
func (d *OrderDispatcher) dispatchGroup(ctx context.Context, provider string, order models.DropshipOrderData) GroupResult {
	gr := GroupResult{Provider: provider}

	mapping := &models.ExternalOrderMapping{
		ID:              uuid.NewString(),
		TenantID:        order.TenantID,
		InternalOrderID: order.InternalOrderID,
		Provider:        provider,
		Status:          models.MappingStatusPending,
	}

	prov, err := d.registry.Get(provider)
	if err != nil {
		return d.failGroup(ctx, gr, mapping, err)
	}

	shipping, err := prov.CalculateShipping(ctx, order)
	if err != nil {
		// The contract wants adapters to degrade to an estimate themselves;
		// if one errors anyway, dispatch proceeds without a quote.
		d.logger.Warn("shipping quote failed, dispatching without one",
			zap.String("provider", provider),
			zap.String("order", order.InternalOrderID),
			zap.Error(err),
		)
		shipping = models.ShippingInfo{Estimated: true, Currency: order.Currency}
	}
	gr.Shipping = shipping
	mapping.ShippingCost = shipping.Cost
	mapping.EstimatedDelivery = shipping.EstimatedDeliveryDate

	created, err := prov.CreateOrder(ctx, order)
	if err != nil {
		return d.failGroup(ctx, gr, mapping, err)
	}

	mapping.Status = models.MappingStatusSubmitted
	mapping.ExternalOrderID = created.ExternalOrderID
	mapping.ProviderPayload = created.ProviderPayload
	gr.Status = models.MappingStatusSubmitted
	gr.ExternalOrderID = created.ExternalOrderID

	if err := d.mappings.Create(ctx, mapping); err != nil {
		// The provider-side order exists; losing the mapping silently would
		// orphan it, so the miss is reported alongside the submission.
		gr.Error = fmt.Sprintf("order submitted but mapping not persisted: %v", err)
		d.logger.Error("failed to persist order mapping",
			zap.String("provider", provider),
			zap.String("order", order.InternalOrderID),
			zap.String("external_order_id", created.ExternalOrderID),
			zap.Error(err),
		)
	}
	d.publish(ctx, "dropship.order.submitted", order, provider, created.ExternalOrderID, "")
	return gr
}

func (d *OrderDispatcher) failGroup(ctx context.Context, gr GroupResult, mapping *models.ExternalOrderMapping, err error) GroupResult {
	gr.Status = models.MappingStatusFailed
	gr.Error = err.Error()
	mapping.Status = models.MappingStatusFailed
	mapping.Error = err.Error()

	d.logger.Error("provider order creation failed",
		zap.String("provider", mapping.Provider),
		zap.String("order", mapping.InternalOrderID),
		zap.Error(err),
	)
	if perr := d.mappings.Create(ctx, mapping); perr != nil {
		d.logger.Error("failed to persist failed order mapping",
			zap.String("provider", mapping.Provider),
			zap.Error(perr),
		)
	}
	d.publish(ctx, "dropship.order.failed", models.DropshipOrderData{
		InternalOrderID: mapping.InternalOrderID,
		TenantID:        mapping.TenantID,
	}, mapping.Provider, "", err.Error())
	return gr
}

func (d *OrderDispatcher) publish(ctx context.Context, eventType string, order models.DropshipOrderData, provider, externalID, errMsg string) {
	if d.events == nil {
		return
	}
	event := OrderDispatchedEvent{
		EventType:       eventType,
		TenantID:        order.TenantID,
		InternalOrderID: order.InternalOrderID,
		Provider:        provider,
		ExternalOrderID: externalID,
		Error:           errMsg,
		Timestamp:       time.Now().UTC(),
	}
	if err := d.events.Publish(ctx, order.InternalOrderID, event); err != nil {
		d.logger.Warn("event publish failed", zap.String("event", eventType), zap.Error(err))
	}
}

// Mappings returns the external order mappings recorded for an internal order.
func (d *OrderDispatcher) Mappings(ctx context.Context, tenantID, internalOrderID string) ([]models.ExternalOrderMapping, error) {
	return d.mappings.FindByInternalOrder(ctx, tenantID, internalOrderID)
}

// UpdateExternalOrderStatus is the entry point the webhook handler calls when
// a provider pushes an asynchronous order-status update.
func (d *OrderDispatcher) UpdateExternalOrderStatus(ctx context.Context, provider, externalOrderID, newStatus string) error {
	if !models.ValidMappingStatus(newStatus) {
		return fmt.Errorf("%w %q", ErrUnknownStatus, newStatus)
	}
	return d.mappings.UpdateStatusByExternal(ctx, provider, externalOrderID, newStatus)
}
