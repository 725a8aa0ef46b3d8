package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"periodic-quiz/internal/catalog"
	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/infra/memory"
)

// CatalogKey holds the JSON encoded catalog.
const CatalogKey = "quiz:catalog"

// CatalogRepository caches the catalog in Redis and falls back to a loader on
// cache miss. A corrupt cache entry is treated as a miss.
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	logger *slog.Logger
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration, logger *slog.Logger) *CatalogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if c, ok := r.cached(ctx); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if c, ok := r.cached(ctx); ok {
			return c, nil
		}

		c, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := catalog.Validate(c); err != nil {
			return domain.Catalog{}, err
		}

		data, err := json.Marshal(c)
		if err == nil {
			// best-effort fill, the loader result is returned either way
			if err := r.client.Set(ctx, CatalogKey, data, r.ttlWithJitter()).Err(); err != nil {
				r.logger.Warn("catalog cache fill failed", "error", err)
			}
		}
		return c, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate drops the cached catalog, e.g. after a reseed.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, CatalogKey).Err()
}

func (r *CatalogRepository) cached(ctx context.Context) (domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, CatalogKey).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var c domain.Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		r.logger.Warn("catalog cache corrupt", "error", err)
		return domain.Catalog{}, false
	}
	if catalog.Validate(c) != nil {
		return domain.Catalog{}, false
	}
	return c, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
