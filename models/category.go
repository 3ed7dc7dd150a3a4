package models

import (
	"strings"
	"time"
)

// Category source constants. Provider-sourced categories carry an entry in
// ExternalMappings; default (fallback) categories never do.
const (
	CategorySourceProvider = "provider"
	CategorySourceDefault  = "default"
)

// Category is a tenant-scoped node in the category tree.
type Category struct {
	ID           string   `json:"id" bson:"_id"`
	TenantID     string   `json:"tenant_id" bson:"tenant_id"`
	Name         string   `json:"name" bson:"name"`
	Slug         string   `json:"slug" bson:"slug"` // unique per tenant
	ParentID     *string  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Level        int      `json:"level" bson:"level"` // 0 = root
	Path         string   `json:"path" bson:"path"`   // slash-joined slug path, e.g. "electronics/phones"
	Breadcrumbs  []string `json:"breadcrumbs" bson:"breadcrumbs"`
	IsActive     bool     `json:"is_active" bson:"is_active"`
	IsFeatured   bool     `json:"is_featured" bson:"is_featured"`
	ProductCount int64    `json:"product_count" bson:"product_count"`
	// ExternalMappings maps a provider name to that provider's category id.
	ExternalMappings map[string]string `json:"external_mappings,omitempty" bson:"external_mappings,omitempty"`
	Source           string            `json:"source" bson:"source"`
	CreatedAt        time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" bson:"updated_at"`
}

// Slugify normalizes a category or product name into a URL-safe slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
