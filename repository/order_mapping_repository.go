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

type MongoOrderMappingRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderMappingRepository(db *mongo.Database) *MongoOrderMappingRepository {
	return &MongoOrderMappingRepository{collection: db.Collection("external_order_mappings")}
}

func (r *MongoOrderMappingRepository) Create(ctx context.Context, m *models.ExternalOrderMapping) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

func (r *MongoOrderMappingRepository) FindByInternalOrder(ctx context.Context, tenantID, internalOrderID string) ([]models.ExternalOrderMapping, error) {
	filter := bson.M{"tenant_id": tenantID, "internal_order_id": internalOrderID}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mappings []models.ExternalOrderMapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *MongoOrderMappingRepository) UpdateStatusByExternal(ctx context.Context, provider, externalOrderID, newStatus string) error {
	filter := bson.M{"provider": provider, "external_order_id": externalOrderID}
	update := bson.M{"$set": bson.M{"status": newStatus, "updated_at": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no mapping for provider %s order %s: %w", provider, externalOrderID, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *MongoOrderMappingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// One mapping per provider per internal order.
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "internal_order_id", Value: 1},
				{Key: "provider", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "provider", Value: 1}, {Key: "external_order_id", Value: 1}},
		},
	})
	return err
}
