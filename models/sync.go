package models

import "time"

// SyncSummary is the persisted outcome of the most recent catalog sync.
type SyncSummary struct {
	Imported         int      `json:"imported" bson:"imported"`
	Updated          int      `json:"updated" bson:"updated"`
	Failed           int      `json:"failed" bson:"failed"`
	FailedCategories []string `json:"failed_categories,omitempty" bson:"failed_categories,omitempty"`
	FallbackUsed     bool     `json:"fallback_used" bson:"fallback_used"`
	DurationMs       int64    `json:"duration_ms" bson:"duration_ms"`
}

// SyncRun tracks, per (tenant, provider), when catalog sync and inventory
// reconciliation last completed so the reconciler can run incrementally.
type SyncRun struct {
	ID                 string       `json:"id" bson:"_id"`
	TenantID           string       `json:"tenant_id" bson:"tenant_id"`
	Provider           string       `json:"provider" bson:"provider"`
	LastCategorySyncAt *time.Time   `json:"last_category_sync_at,omitempty" bson:"last_category_sync_at,omitempty"`
	LastReconcileAt    *time.Time   `json:"last_reconcile_at,omitempty" bson:"last_reconcile_at,omitempty"`
	LastSummary        *SyncSummary `json:"last_summary,omitempty" bson:"last_summary,omitempty"`
	UpdatedAt          time.Time    `json:"updated_at" bson:"updated_at"`
}
