// Package redis fronts a durable ProfileStore with a Redis read-through
// cache for fresh-profile lookups.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/ports"
)

const keyPrefix = "sitesmith:profile:"

// CachedStore caches FindFresh hits by URL. Redis failures never fail a
// call; they are logged and the durable store answers instead.
type CachedStore struct {
	ports.ProfileStore
	rdb *goredis.Client
	ttl time.Duration
	log logger.Logger
	now func() time.Time
}

func NewCachedStore(inner ports.ProfileStore, rdb *goredis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{ProfileStore: inner, rdb: rdb, ttl: ttl, log: log.With(logger.String("component", "profile_cache")), now: time.Now}
}

// SetClock overrides the time source used for the freshness re-check.
func (c *CachedStore) SetClock(now func() time.Time) { c.now = now }

func key(url string) string { return keyPrefix + url }

func (c *CachedStore) FindFresh(ctx context.Context, url string, maxAge time.Duration) (domain.Profile, bool, error) {
	if p, ok := c.get(ctx, url); ok && p.IsActive && !p.ExtractedAt.Before(c.now().Add(-maxAge)) {
		return p, true, nil
	}
	p, ok, err := c.ProfileStore.FindFresh(ctx, url, maxAge)
	if err != nil || !ok {
		return p, ok, err
	}
	c.set(ctx, p)
	return p, true, nil
}

func (c *CachedStore) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	stored, err := c.ProfileStore.Upsert(ctx, p)
	if err != nil {
		c.del(ctx, p.KingURL)
		return stored, err
	}
	c.set(ctx, stored)
	return stored, nil
}

func (c *CachedStore) Deactivate(ctx context.Context, url string) (bool, error) {
	changed, err := c.ProfileStore.Deactivate(ctx, url)
	c.del(ctx, url)
	return changed, err
}

func (c *CachedStore) get(ctx context.Context, url string) (domain.Profile, bool) {
	raw, err := c.rdb.Get(ctx, key(url)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Profile{}, false
	}
	if err != nil {
		c.log.Warn("profile cache read failed", logger.String("url", url), logger.Error(err))
		return domain.Profile{}, false
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn("profile cache entry undecodable", logger.String("url", url), logger.Error(err))
		c.del(ctx, url)
		return domain.Profile{}, false
	}
	return p, true
}

func (c *CachedStore) set(ctx context.Context, p domain.Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(p.KingURL), raw, c.ttl).Err(); err != nil {
		c.log.Warn("profile cache write failed", logger.String("url", p.KingURL), logger.Error(err))
	}
}

func (c *CachedStore) del(ctx context.Context, url string) {
	if err := c.rdb.Del(ctx, key(url)).Err(); err != nil {
		c.log.Warn("profile cache invalidate failed", logger.String("url", url), logger.Error(err))
	}
}
