package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesmith/internal/adapters/memory"
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
)

type countingStore struct {
	*memory.ProfileStore
	freshCalls int
}

func (c *countingStore) FindFresh(ctx context.Context, url string, maxAge time.Duration) (domain.Profile, bool, error) {
	c.freshCalls++
	return c.ProfileStore.FindFresh(ctx, url, maxAge)
}

type harness struct {
	mr    *miniredis.Miniredis
	inner *countingStore
	cache *CachedStore
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{mr: miniredis.RunT(t), now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return h.now }

	rdb := goredis.NewClient(&goredis.Options{Addr: h.mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h.inner = &countingStore{ProfileStore: memory.NewProfileStore(memory.WithClock(clock))}
	h.cache = NewCachedStore(h.inner, rdb, 10*time.Minute, logger.NewNop())
	h.cache.SetClock(clock)
	return h
}

func testProfile(url string) domain.Profile {
	return domain.Profile{KingURL: url, KingName: "Acme", ProfileData: json.RawMessage(`{"a":1}`)}
}

const window = 30 * 24 * time.Hour

func TestCachedStore_UpsertPopulatesCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.cache.Upsert(ctx, testProfile("https://a.example"))
	require.NoError(t, err)
	assert.True(t, h.mr.Exists(keyPrefix+"https://a.example"))

	p, ok, err := h.cache.FindFresh(ctx, "https://a.example", window)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme", p.KingName)
	assert.JSONEq(t, `{"a":1}`, string(p.ProfileData))
	assert.Equal(t, 0, h.inner.freshCalls)
}

func TestCachedStore_MissFallsThroughAndFills(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.inner.Upsert(ctx, testProfile("https://a.example"))
	require.NoError(t, err)

	_, ok, err := h.cache.FindFresh(ctx, "https://a.example", window)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, h.inner.freshCalls)

	_, ok, _ = h.cache.FindFresh(ctx, "https://a.example", window)
	assert.True(t, ok)
	assert.Equal(t, 1, h.inner.freshCalls, "second read served from redis")
}

func TestCachedStore_RechecksFreshness(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cache.Upsert(ctx, testProfile("https://a.example"))
	require.NoError(t, err)

	h.now = h.now.Add(window + time.Second)
	_, ok, err := h.cache.FindFresh(ctx, "https://a.example", window)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, h.inner.freshCalls)
}

func TestCachedStore_DeactivateInvalidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cache.Upsert(ctx, testProfile("https://a.example"))
	require.NoError(t, err)

	changed, err := h.cache.Deactivate(ctx, "https://a.example")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, h.mr.Exists(keyPrefix+"https://a.example"))

	_, ok, _ := h.cache.FindFresh(ctx, "https://a.example", window)
	assert.False(t, ok)
}

func TestCachedStore_RedisDownFallsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.inner.Upsert(ctx, testProfile("https://a.example"))
	require.NoError(t, err)
	h.mr.Close()

	p, ok, err := h.cache.FindFresh(ctx, "https://a.example", window)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://a.example", p.KingURL)

	_, err = h.cache.Upsert(ctx, testProfile("https://b.example"))
	assert.NoError(t, err)
}

func TestCachedStore_CorruptEntryIsDropped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.mr.Set(keyPrefix+"https://a.example", "{not json"))

	_, ok, err := h.cache.FindFresh(ctx, "https://a.example", window)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, h.mr.Exists(keyPrefix+"https://a.example"))
}

func TestNewClient_EmptyAddress(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestNewClient_Pings(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(Config{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = c.Close()
}
