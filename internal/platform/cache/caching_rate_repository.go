// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"coin_backend/internal/feature/exchangerate/domain/entity"
	"coin_backend/internal/feature/exchangerate/usecase"
)

// CachingRateRepository decorates an ExchangeRateRepository with Redis caching
// of the latest-per-pair view. Writes invalidate every key in the namespace.
type CachingRateRepository struct {
	inner     usecase.ExchangeRateRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ExchangeRateRepository = (*CachingRateRepository)(nil)

// NewCachingRateRepository decorates an ExchangeRateRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "rates".
func NewCachingRateRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ExchangeRateRepository, namespace string) *CachingRateRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "rates"
	}
	return &CachingRateRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the snapshot and invalidates the cached views.
func (c *CachingRateRepository) Create(ctx context.Context, s *entity.ExchangeRateSnapshot) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	_ = c.deleteByPattern(ctx, c.namespace+":*") // best effort
	return nil
}

func (c *CachingRateRepository) FindByID(ctx context.Context, id uint) (*entity.ExchangeRateSnapshot, error) {
	return c.inner.FindByID(ctx, id)
}

func (c *CachingRateRepository) List(ctx context.Context, f usecase.Filter) ([]entity.ExchangeRateSnapshot, error) {
	return c.inner.List(ctx, f)
}

// Latest returns the latest snapshot per pair, checking the cache first.
func (c *CachingRateRepository) Latest(ctx context.Context) ([]entity.ExchangeRateSnapshot, error) {
	if c.rdb == nil {
		return c.inner.Latest(ctx)
	}

	key := c.latestKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.ExchangeRateSnapshot
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Latest(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingRateRepository) latestKey() string {
	return c.namespace + ":latest"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingRateRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
