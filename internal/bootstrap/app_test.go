package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesmith/internal/adapters/memory"
	redisadapter "sitesmith/internal/adapters/redis"
	"sitesmith/internal/config"
	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
)

func memoryConfig() config.Config {
	return config.Config{
		StoreDriver:        config.DriverMemory,
		AnthropicModel:     "claude-sonnet-4-5",
		FreshnessDays:      30,
		CompletenessWarnAt: 60,
	}
}

func TestNew_MemoryStore(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), logger.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.IsType(t, &memory.ProfileStore{}, app.Store)
	assert.Equal(t, "general", app.Industries.GetByID("nope").ID)
	assert.Len(t, app.Templates.Keys(), 15)
	assert.NotNil(t, app.MetricsHandler())
}

func TestNew_TwiceWithFreshRegistries(t *testing.T) {
	for i := 0; i < 2; i++ {
		app, err := New(context.Background(), memoryConfig(), logger.NewNop(), prometheus.NewRegistry())
		require.NoError(t, err)
		app.Close()
	}
}

func TestNewCatalog_NeedsNoStore(t *testing.T) {
	cat, err := NewCatalog(logger.NewNop(), nil)
	require.NoError(t, err)

	ind, hit := cat.Industries.Resolve("plumbing")
	assert.True(t, hit)
	assert.Equal(t, "plumbing", ind.ID)
	assert.Len(t, cat.Templates.Keys(), 15)
}

func TestNew_ExtractWithoutKeyIsConfigurationError(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), logger.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	_, err = app.Forensics.Extract(context.Background(), domain.ExtractRequest{URL: "https://a.example", Name: "A"})
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}

func TestOpenStore_LayersRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.RedisAddr = mr.Addr()

	store, closeFn, err := OpenStore(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(closeFn)
	assert.IsType(t, &redisadapter.CachedStore{}, store)
}

func TestOpenStore_UnreachableRedisIsSkipped(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	store, closeFn, err := OpenStore(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(closeFn)
	assert.IsType(t, &memory.ProfileStore{}, store)
}

func TestOpenStore_PostgresNeedsURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = config.DriverPostgres

	_, _, err := OpenStore(context.Background(), cfg, logger.NewNop())
	assert.ErrorIs(t, err, config.ErrNoDatabaseURL)
}
