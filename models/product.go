package models

import "time"

// Inventory holds the stock details embedded on a product.
type Inventory struct {
	Quantity          int  `json:"quantity" bson:"quantity"`
	LowStockThreshold int  `json:"low_stock_threshold" bson:"low_stock_threshold"`
	InStock           bool `json:"in_stock" bson:"in_stock"`
}

// Variant is a purchasable variation of a product (size, color, ...).
type Variant struct {
	VariantID  string  `json:"variant_id" bson:"variant_id"`
	Name       string  `json:"name" bson:"name"`
	Price      float64 `json:"price" bson:"price"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	Attributes string  `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Product is a tenant-scoped catalog item. For dropship products the tuple
// (TenantID, DropshipProvider, DropshipProductID) is unique and acts as the
// idempotency key for imports: re-importing the same provider product updates
// the existing record, never duplicates it.
type Product struct {
	ID           string    `json:"id" bson:"_id"`
	TenantID     string    `json:"tenant_id" bson:"tenant_id"`
	Name         string    `json:"title" bson:"title"`
	Slug         string    `json:"slug" bson:"slug"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64   `json:"price" bson:"price"`
	ListPrice    float64   `json:"list_price" bson:"list_price"`
	CategorySlug string    `json:"category_slug" bson:"category_slug"`
	SKU          string    `json:"sku" bson:"sku"`
	Images       []string  `json:"images" bson:"images"`
	Inventory    Inventory `json:"inventory" bson:"inventory"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	IsDropship   bool      `json:"is_dropship" bson:"is_dropship"`
	// Required when IsDropship is true.
	DropshipProvider  string    `json:"dropship_provider,omitempty" bson:"dropship_provider,omitempty"`
	DropshipProductID string    `json:"dropship_product_id,omitempty" bson:"dropship_product_id,omitempty"`
	Tags              []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Variants          []Variant `json:"variants,omitempty" bson:"variants,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}
