package estuary

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"estuary/models"
)

// QueryCache stores JSON-encoded query results under string keys.
type QueryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type RedisQueryCache struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisQueryCache(client *redis.Client, keyPrefix string) *RedisQueryCache {
	return &RedisQueryCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisQueryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisQueryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err()
}

// DeletePrefix removes every key under prefix. SCAN keeps it off the blocking KEYS path.
func (c *RedisQueryCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Cache key prefixes. Practitioner-scoped keys append the practitioner id.
const (
	KeyServiceTypes           = "catalog:service-types"
	KeyCategories             = "catalog:categories"
	KeyModalities             = "catalog:modalities"
	KeyPractitionerCategories = "practitioner-categories:"
	KeySchedules              = "schedules:"
	KeyServices               = "services:"
)

// CachedCatalog is a read-through cache in front of the catalogue endpoints.
// Cache failures are logged and fall through to the API.
type CachedCatalog struct {
	api    Catalog
	cache  QueryCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(api Catalog, cache QueryCache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{api: api, cache: cache, ttl: ttl, logger: logger}
}

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, fetch func() (T, error)) (T, error) {
	var cached T
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("CachedCatalog: cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	fresh, err := fetch()
	if err != nil {
		return fresh, err
	}
	if err := c.cache.Set(ctx, key, fresh, c.ttl); err != nil {
		c.logger.Warn("CachedCatalog: cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, nil
}

func (c *CachedCatalog) ServiceTypes(ctx context.Context) ([]models.ServiceTypeInfo, error) {
	return readThrough(ctx, c, KeyServiceTypes, func() ([]models.ServiceTypeInfo, error) {
		return c.api.ServiceTypes(ctx)
	})
}

func (c *CachedCatalog) Categories(ctx context.Context) ([]models.Category, error) {
	return readThrough(ctx, c, KeyCategories, func() ([]models.Category, error) {
		return c.api.Categories(ctx)
	})
}

func (c *CachedCatalog) Modalities(ctx context.Context) ([]models.Modality, error) {
	return readThrough(ctx, c, KeyModalities, func() ([]models.Modality, error) {
		return c.api.Modalities(ctx)
	})
}

func (c *CachedCatalog) PractitionerCategories(ctx context.Context, practitionerID string) ([]models.PractitionerCategory, error) {
	return readThrough(ctx, c, KeyPractitionerCategories+practitionerID, func() ([]models.PractitionerCategory, error) {
		return c.api.PractitionerCategories(ctx)
	})
}

func (c *CachedCatalog) Schedules(ctx context.Context, practitionerID string) ([]models.Schedule, error) {
	return readThrough(ctx, c, KeySchedules+practitionerID, func() ([]models.Schedule, error) {
		return c.api.Schedules(ctx)
	})
}

// SessionServices lists the practitioner's active session-type services,
// the only services bundles and packages may be built from.
func (c *CachedCatalog) SessionServices(ctx context.Context, practitionerID string) ([]models.ServiceSummary, error) {
	return readThrough(ctx, c, KeyServices+practitionerID+":session", func() ([]models.ServiceSummary, error) {
		records, err := c.api.ListServices(ctx, ServiceFilter{
			PractitionerID: practitionerID,
			ServiceType:    models.ServiceTypeSession,
			ActiveOnly:     true,
		})
		if err != nil {
			return nil, err
		}
		out := make([]models.ServiceSummary, 0, len(records))
		for _, r := range records {
			out = append(out, r.Summary())
		}
		return out, nil
	})
}

// SearchPractitioners is never cached.
func (c *CachedCatalog) SearchPractitioners(ctx context.Context, query string) ([]models.PractitionerSummary, error) {
	return c.api.SearchPractitioners(ctx, query)
}

func (c *CachedCatalog) Invalidate(ctx context.Context, prefix string) error {
	return c.cache.DeletePrefix(ctx, prefix)
}

// InvalidateServices drops the practitioner's cached service lists after a write.
func (c *CachedCatalog) InvalidateServices(ctx context.Context, practitionerID string) error {
	return c.Invalidate(ctx, KeyServices+practitionerID)
}
