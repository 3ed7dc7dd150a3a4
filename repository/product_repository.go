package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// UpsertDropship writes a dropship product using the idempotency key
// (tenant_id, dropship_provider, dropship_product_id). Identity fields go in
// $setOnInsert so re-imports update mutable fields only. The unique index
// from EnsureIndexes makes a duplicate-key error here a data-modeling bug;
// it is surfaced loudly, never swallowed.
func (r *MongoProductRepository) UpsertDropship(ctx context.Context, p *models.Product) (bool, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"tenant_id":           p.TenantID,
		"dropship_provider":   p.DropshipProvider,
		"dropship_product_id": p.DropshipProductID,
	}
	update := bson.M{
		"$set": bson.M{
			"title":         p.Name,
			"slug":          p.Slug,
			"description":   p.Description,
			"price":         p.Price,
			"list_price":    p.ListPrice,
			"category_slug": p.CategorySlug,
			"sku":           p.SKU,
			"images":        p.Images,
			"inventory":     p.Inventory,
			"is_active":     p.IsActive,
			"is_dropship":   true,
			"tags":          p.Tags,
			"variants":      p.Variants,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        p.ID,
			"created_at": now,
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("idempotency conflict for %s/%s/%s: %w",
				p.TenantID, p.DropshipProvider, p.DropshipProductID, err)
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *MongoProductRepository) FindDropship(ctx context.Context, tenantID, provider string, updatedBefore time.Time, limit, offset int) ([]models.Product, error) {
	filter := bson.M{
		"tenant_id":   tenantID,
		"is_dropship": true,
		"updated_at":  bson.M{"$lt": updatedBefore},
	}
	if provider != "" {
		filter["dropship_provider"] = provider
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) UpdateInventoryFields(ctx context.Context, id string, price, listPrice float64, inv models.Inventory) error {
	update := bson.M{"$set": bson.M{
		"price":      price,
		"list_price": listPrice,
		"inventory":  inv,
		"updated_at": time.Now().UTC(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *MongoProductRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	filter := bson.M{"tenant_id": tenantID, "_id": bson.M{"$in": ids}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) CountActiveByCategorySlug(ctx context.Context, tenantID, slug string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"tenant_id":     tenantID,
		"category_slug": slug,
		"is_active":     true,
	})
}

func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Idempotency key for dropship imports.
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "dropship_provider", Value: 1},
				{Key: "dropship_product_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"is_dropship": true},
			),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "category_slug", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "updated_at", Value: 1}},
		},
	})
	return err
}
