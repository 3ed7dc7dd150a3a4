package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	syncQueueKey  = "dropship:sync:queue"
	syncJobKeyFmt = "dropship:sync:job:%s"
	syncJobTTL    = 24 * time.Hour
)

// Sync job statuses.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// SyncJob is an asynchronous catalog sync request with its lifecycle state.
type SyncJob struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id" validate:"required"`
	Provider      string         `json:"provider" validate:"required"`
	CategorySlugs []string       `json:"category_slugs,omitempty"`
	MaxCategories int            `json:"max_categories,omitempty" validate:"gte=0"`
	Status        string         `json:"status"`
	Summary       *ImportSummary `json:"summary,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ErrJobNotFound is returned when a job id is unknown or expired.
var ErrJobNotFound = errors.New("sync job not found")

// SyncQueue is a redis-backed queue of catalog sync jobs. Producers enqueue
// job ids; a single background worker consumes them and runs the importer,
// writing job status back with a TTL so clients can poll.
type SyncQueue struct {
	rdb      *redis.Client
	importer *CatalogImporter
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSyncQueue(rdb *redis.Client, importer *CatalogImporter, logger *zap.Logger) *SyncQueue {
	return &SyncQueue{rdb: rdb, importer: importer, validate: validator.New(), logger: logger}
}

// Enqueue persists the job record and pushes its id onto the queue.
func (q *SyncQueue) Enqueue(ctx context.Context, job *SyncJob) (string, error) {
	if err := q.validate.Struct(job); err != nil {
		return "", fmt.Errorf("invalid sync job: %w", err)
	}
	job.ID = uuid.NewString()
	job.Status = JobStatusQueued
	job.CreatedAt = time.Now().UTC()

	if err := q.saveJob(ctx, job); err != nil {
		return "", err
	}
	if err := q.rdb.RPush(ctx, syncQueueKey, job.ID).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// GetJob returns the current state of a job.
func (q *SyncQueue) GetJob(ctx context.Context, id string) (*SyncJob, error) {
	val, err := q.rdb.Get(ctx, fmt.Sprintf(syncJobKeyFmt, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job SyncJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartWorker launches the background consumer. It stops when ctx is done.
func (q *SyncQueue) StartWorker(ctx context.Context) {
	go func() {
		q.logger.Info("sync worker started", zap.String("queue", syncQueueKey))
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("sync worker stopping")
				return
			default:
			}

			res, err := q.rdb.BLPop(ctx, 5*time.Second, syncQueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				q.logger.Error("queue pop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			q.process(ctx, res[1])
		}
	}()
}

func (q *SyncQueue) process(ctx context.Context, jobID string) {
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		q.logger.Error("failed to load job", zap.String("job", jobID), zap.Error(err))
		return
	}

	job.Status = JobStatusProcessing
	if err := q.saveJob(ctx, job); err != nil {
		q.logger.Error("failed to mark job processing", zap.String("job", jobID), zap.Error(err))
	}

	summary, err := q.importer.SyncCatalog(ctx, ImportOptions{
		TenantID:      job.TenantID,
		Provider:      job.Provider,
		CategorySlugs: job.CategorySlugs,
		MaxCategories: job.MaxCategories,
	})
	if err != nil {
		job.Status = JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = JobStatusDone
		job.Summary = summary
	}
	if err := q.saveJob(ctx, job); err != nil {
		q.logger.Error("failed to store job result", zap.String("job", jobID), zap.Error(err))
	}
}

func (q *SyncQueue) saveJob(ctx context.Context, job *SyncJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.Set(ctx, fmt.Sprintf(syncJobKeyFmt, job.ID), b, syncJobTTL).Err()
}
