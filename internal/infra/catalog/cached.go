package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"content-paywall/internal/domain/model"
	"content-paywall/internal/domain/ports/adapter"
	"content-paywall/internal/infra/metrics"
	red "content-paywall/internal/infra/redis"
)

var _ adapter.CatalogLookup = (*cachedLookup)(nil)

// cachedLookup is a read-through Redis cache in front of the catalog client.
// A price served from cache within the TTL is fine: payments snapshot
// whatever the catalog served at creation time.
type cachedLookup struct {
	inner adapter.CatalogLookup
	cache red.RedisClient
	ttl   time.Duration
}

func NewCachedLookup(inner adapter.CatalogLookup, cache red.RedisClient, ttl time.Duration) adapter.CatalogLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedLookup{inner: inner, cache: cache, ttl: ttl}
}

func (d *cachedLookup) FindContent(ctx context.Context, contentID string) (*model.ContentRef, error) {
	key := fmt.Sprintf("content:%s", contentID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("content", "hit")
		var ref model.ContentRef
		if json.Unmarshal([]byte(val), &ref) == nil {
			return &ref, nil
		}
	}

	metrics.IncCacheRequest("content", "miss")
	ref, err := d.inner.FindContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(ref); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return ref, nil
}
