package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

type MongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection("categories")}
}

// UpsertBySlug writes a category keyed by (tenant_id, slug). External
// mappings are merged per provider key so syncing provider A never drops
// provider B's mapping on a shared category.
func (r *MongoCategoryRepository) UpsertBySlug(ctx context.Context, c *models.Category) error {
	now := time.Now().UTC()
	set := bson.M{
		"name":        c.Name,
		"parent_id":   c.ParentID,
		"level":       c.Level,
		"path":        c.Path,
		"breadcrumbs": c.Breadcrumbs,
		"is_active":   c.IsActive,
		"source":      c.Source,
		"updated_at":  now,
	}
	for provider, extID := range c.ExternalMappings {
		set["external_mappings."+provider] = extID
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":           c.ID,
			"is_featured":   c.IsFeatured,
			"product_count": int64(0),
			"created_at":    now,
		},
	}

	filter := bson.M{"tenant_id": c.TenantID, "slug": c.Slug}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoCategoryRepository) FindBySlug(ctx context.Context, tenantID, slug string) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "slug": slug}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *MongoCategoryRepository) FindAll(ctx context.Context, tenantID string) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategoryRepository) SetProductCount(ctx context.Context, tenantID, slug string, count int64) error {
	update := bson.M{"$set": bson.M{"product_count": count, "updated_at": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"tenant_id": tenantID, "slug": slug}, update)
	return err
}

func (r *MongoCategoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "parent_id", Value: 1}},
		},
	})
	return err
}
