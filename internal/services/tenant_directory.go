package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// TenantDirectory answers whether a tenant is registered.
type TenantDirectory interface {
	Exists(ctx context.Context, tenantName string) (bool, error)
}

type repoTenantDirectory struct {
	repo repos.TenantRepo
}

func NewRepoTenantDirectory(repo repos.TenantRepo) TenantDirectory {
	return &repoTenantDirectory{repo: repo}
}

func (d *repoTenantDirectory) Exists(ctx context.Context, tenantName string) (bool, error) {
	return d.repo.ExistsByTenantName(dbctx.Context{Ctx: ctx}, tenantName)
}

// existsCache remembers positive lookups only.
type existsCache interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, ttl time.Duration) error
}

type redisExistsCache struct {
	rdb redis.UniversalClient
}

func (c redisExistsCache) Get(ctx context.Context, key string) (bool, error) {
	err := c.rdb.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c redisExistsCache) Set(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, "1", ttl).Err()
}

type cachedTenantDirectory struct {
	inner   TenantDirectory
	cache   existsCache
	ttl     time.Duration
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewCachedTenantDirectory caches positive answers of inner in redis for ttl.
// Redis failures degrade to calling inner.
func NewCachedTenantDirectory(inner TenantDirectory, rdb redis.UniversalClient, ttl time.Duration, metrics *observability.Metrics, log *logger.Logger) TenantDirectory {
	return newCachedTenantDirectory(inner, redisExistsCache{rdb: rdb}, ttl, metrics, log)
}

func newCachedTenantDirectory(inner TenantDirectory, cache existsCache, ttl time.Duration, metrics *observability.Metrics, log *logger.Logger) *cachedTenantDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &cachedTenantDirectory{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		log:     log.With("service", "TenantDirectoryCache"),
	}
}

func tenantCacheKey(tenantName string) string {
	return "fp:tenant:exists:" + strings.ToLower(tenantName)
}

func (d *cachedTenantDirectory) Exists(ctx context.Context, tenantName string) (bool, error) {
	tenantName = strings.TrimSpace(tenantName)
	if tenantName == "" {
		return false, nil
	}
	key := tenantCacheKey(tenantName)
	hit, err := d.cache.Get(ctx, key)
	switch {
	case err != nil:
		d.metrics.IncTenantCache("error")
		d.log.Warn("Tenant cache read failed", "tenant", tenantName, "error", err)
	case hit:
		d.metrics.IncTenantCache("hit")
		return true, nil
	default:
		d.metrics.IncTenantCache("miss")
	}

	ok, err := d.inner.Exists(ctx, tenantName)
	if err != nil || !ok {
		return ok, err
	}
	if err := d.cache.Set(ctx, key, d.ttl); err != nil {
		d.log.Warn("Tenant cache write failed", "tenant", tenantName, "error", err)
	}
	return true, nil
}
