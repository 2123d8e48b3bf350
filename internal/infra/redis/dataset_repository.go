package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"wahlnetz-service/internal/domain"
)

// DatasetLoader fetches a dataset from a backing store (file, Postgres).
type DatasetLoader interface {
	LoadDataset(ctx context.Context, datasetID string) (domain.Dataset, error)
}

// DatasetRepository caches whole datasets in Redis and falls back to a loader on miss.
// A dataset is stored as one JSON string under dataset:{id} so party order survives;
// a hash would lose it and with it the tie order of the leader computation.
type DatasetRepository struct {
	client *redis.Client
	loader DatasetLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewDatasetRepository(client *redis.Client, loader DatasetLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DatasetRepository) GetDataset(ctx context.Context, datasetID string) (domain.Dataset, error) {
	if ds, ok := r.fromCache(ctx, datasetID); ok {
		return ds, nil
	}

	result, err, _ := r.sf.Do(datasetID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ds, ok := r.fromCache(ctx, datasetID); ok {
			return ds, nil
		}

		ds, err := r.loader.LoadDataset(ctx, datasetID)
		if err != nil {
			return domain.Dataset{}, err
		}

		data, err := json.Marshal(ds)
		if err != nil {
			return domain.Dataset{}, err
		}
		if err := r.client.Set(ctx, r.key(datasetID), data, r.ttlWithJitter()).Err(); err != nil {
			slog.Warn("dataset cache write failed", "dataset", datasetID, "error", err)
		}
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

// Invalidate drops a cached dataset, e.g. after seeding a new version.
func (r *DatasetRepository) Invalidate(ctx context.Context, datasetID string) error {
	return r.client.Del(ctx, r.key(datasetID)).Err()
}

func (r *DatasetRepository) fromCache(ctx context.Context, datasetID string) (domain.Dataset, bool) {
	raw, err := r.client.Get(ctx, r.key(datasetID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("dataset cache read failed", "dataset", datasetID, "error", err)
		}
		return domain.Dataset{}, false
	}
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return domain.Dataset{}, false
	}
	if err := ds.Validate(); err != nil {
		return domain.Dataset{}, false
	}
	return ds, true
}

func (r *DatasetRepository) key(datasetID string) string {
	return "dataset:" + datasetID
}

func (r *DatasetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
