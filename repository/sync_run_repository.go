package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

type MongoSyncRunRepository struct {
	collection *mongo.Collection
}

func NewMongoSyncRunRepository(db *mongo.Database) *MongoSyncRunRepository {
	return &MongoSyncRunRepository{collection: db.Collection("sync_runs")}
}

func (r *MongoSyncRunRepository) Get(ctx context.Context, tenantID, provider string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "provider": provider}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *MongoSyncRunRepository) RecordCategorySync(ctx context.Context, tenantID, provider string, at time.Time, summary *models.SyncSummary) error {
	set := bson.M{
		"last_category_sync_at": at,
		"updated_at":            time.Now().UTC(),
	}
	if summary != nil {
		set["last_summary"] = summary
	}
	return r.upsert(ctx, tenantID, provider, set)
}

func (r *MongoSyncRunRepository) RecordReconcile(ctx context.Context, tenantID, provider string, at time.Time) error {
	return r.upsert(ctx, tenantID, provider, bson.M{
		"last_reconcile_at": at,
		"updated_at":        time.Now().UTC(),
	})
}

func (r *MongoSyncRunRepository) ListPairs(ctx context.Context) ([]models.SyncRun, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []models.SyncRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *MongoSyncRunRepository) upsert(ctx context.Context, tenantID, provider string, set bson.M) error {
	filter := bson.M{"tenant_id": tenantID, "provider": provider}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
