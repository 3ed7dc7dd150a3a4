package services

import (
	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

// DefaultTaxonomyVersion identifies the hard-coded fallback category set. Bump
// it when the set below changes so admins can tell which version a tenant got.
const DefaultTaxonomyVersion = "v1"

type defaultCategory struct {
	Name       string
	Slug       string
	ParentSlug string
}

// defaultTaxonomy is the fixed category set used when a provider's category
// API is unavailable or unconfigured, so a tenant never ends up with zero
// categories. These are tagged CategorySourceDefault and carry no external
// mappings, which is how admins tell them apart from imported categories.
var defaultTaxonomy = []defaultCategory{
	{Name: "Electronics", Slug: "electronics"},
	{Name: "Phones & Accessories", Slug: "phones-accessories", ParentSlug: "electronics"},
	{Name: "Computers", Slug: "computers", ParentSlug: "electronics"},
	{Name: "Fashion", Slug: "fashion"},
	{Name: "Home & Garden", Slug: "home-garden"},
	{Name: "Sports & Outdoors", Slug: "sports-outdoors"},
	{Name: "Toys & Games", Slug: "toys-games"},
	{Name: "Health & Beauty", Slug: "health-beauty"},
}

// DefaultCategories materializes the fallback taxonomy for a tenant with
// hierarchy fields (level, path, breadcrumbs) precomputed. The result is
// deterministic: same tenant input, same categories, stable order.
func DefaultCategories(tenantID string) []models.Category {
	bySlug := make(map[string]*models.Category, len(defaultTaxonomy))
	out := make([]models.Category, 0, len(defaultTaxonomy))

	for _, d := range defaultTaxonomy {
		c := models.Category{
			ID:       "default-" + tenantID + "-" + d.Slug,
			TenantID: tenantID,
			Name:     d.Name,
			Slug:     d.Slug,
			Path:     d.Slug,
			IsActive: true,
			Source:   models.CategorySourceDefault,
		}
		if d.ParentSlug != "" {
			if parent, ok := bySlug[d.ParentSlug]; ok {
				parentID := parent.ID
				c.ParentID = &parentID
				c.Level = parent.Level + 1
				c.Path = parent.Path + "/" + d.Slug
				c.Breadcrumbs = append(append([]string{}, parent.Breadcrumbs...), parent.Name)
			}
		}
		out = append(out, c)
		bySlug[d.Slug] = &out[len(out)-1]
	}
	return out
}
