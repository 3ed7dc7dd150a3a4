package models

import "time"

// Address represents a physical mailing address used for shipping.
type Address struct {
	Name       string `json:"name"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2, e.g. "US"
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// OrderCustomer identifies the end customer on a provider-side order.
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DropshipOrderItem is one line item forwarded to a provider.
type DropshipOrderItem struct {
	ProductID         string  `json:"product_id"` // internal product id
	ProviderProductID string  `json:"provider_product_id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
}

// DropshipOrderData is the payload sent to a provider when creating an order.
type DropshipOrderData struct {
	InternalOrderID string              `json:"internal_order_id"`
	TenantID        string              `json:"tenant_id"`
	Customer        OrderCustomer       `json:"customer"`
	ShippingAddress Address             `json:"shipping_address"`
	Items           []DropshipOrderItem `json:"items"`
	Currency        string              `json:"currency"`
}

// OrderCreationResult is what a provider returns for a created order.
type OrderCreationResult struct {
	ExternalOrderID string `json:"external_order_id"`
	Status          string `json:"status"`
	ProviderPayload string `json:"provider_payload,omitempty"` // opaque response snapshot
}

// ShippingInfo is a cost/ETA quote for a dropship order. Estimated is true
// when the provider's logistics endpoint was unavailable and the numbers are
// a best-effort default rather than a real quote.
type ShippingInfo struct {
	Cost                  float64   `json:"cost"`
	Currency              string    `json:"currency"`
	EstimatedDeliveryDate time.Time `json:"estimated_delivery_date"`
	Estimated             bool      `json:"estimated"`
}

// InventoryUpdate pushes a stock level to a provider.
type InventoryUpdate struct {
	ProviderProductID string `json:"provider_product_id"`
	Quantity          int    `json:"quantity"`
}

// ExternalOrderMapping statuses.
const (
	MappingStatusPending   = "pending"
	MappingStatusSubmitted = "submitted"
	MappingStatusFailed    = "failed"
	// Webhook-driven statuses reported by providers after submission.
	MappingStatusShipped   = "shipped"
	MappingStatusDelivered = "delivered"
	MappingStatusCancelled = "cancelled"
)

// ValidMappingStatus reports whether s is a status this service understands,
// either set by the dispatcher or pushed by a provider webhook.
func ValidMappingStatus(s string) bool {
	switch s {
	case MappingStatusPending, MappingStatusSubmitted, MappingStatusFailed,
		MappingStatusShipped, MappingStatusDelivered, MappingStatusCancelled:
		return true
	}
	return false
}

// ExternalOrderMapping links an internal order's dropship line items to a
// provider-side order. One mapping exists per provider per internal order.
type ExternalOrderMapping struct {
	ID                string    `json:"id" bson:"_id"`
	TenantID          string    `json:"tenant_id" bson:"tenant_id"`
	InternalOrderID   string    `json:"internal_order_id" bson:"internal_order_id"`
	Provider          string    `json:"provider" bson:"provider"`
	ExternalOrderID   string    `json:"external_order_id,omitempty" bson:"external_order_id,omitempty"`
	Status            string    `json:"status" bson:"status"`
	ProviderPayload   string    `json:"provider_payload,omitempty" bson:"provider_payload,omitempty"`
	Error             string    `json:"error,omitempty" bson:"error,omitempty"`
	ShippingCost      float64   `json:"shipping_cost" bson:"shipping_cost"`
	EstimatedDelivery time.Time `json:"estimated_delivery,omitempty" bson:"estimated_delivery,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}
