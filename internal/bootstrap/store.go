package bootstrap

import (
	"context"
	"fmt"

	"sitesmith/internal/adapters/memory"
	"sitesmith/internal/adapters/postgres"
	redisadapter "sitesmith/internal/adapters/redis"
	"sitesmith/internal/config"
	"sitesmith/internal/logger"
	"sitesmith/internal/ports"
)

// OpenStore selects the durable profile store and, when REDIS_ADDR is set,
// layers the read-through cache over it. An unreachable Redis only disables
// the cache.
func OpenStore(ctx context.Context, cfg config.Config, log logger.Logger) (ports.ProfileStore, func(), error) {
	var (
		store   ports.ProfileStore
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory profile store; profiles are lost on restart")
		store = memory.NewProfileStore()
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, config.ErrNoDatabaseURL
		}
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		closers = append(closers, db.Close)
		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx); err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		store = db
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr == "" {
		return store, closeAll, nil
	}
	rdb, err := redisadapter.NewClient(redisadapter.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn("redis not available, profile cache disabled", logger.Error(err))
		return store, closeAll, nil
	}
	closers = append(closers, func() {
		if err := rdb.Close(); err != nil {
			log.Warn("close redis", logger.Error(err))
		}
	})
	log.Info("profile cache enabled", logger.String("redis_addr", cfg.RedisAddr), logger.Duration("ttl", cfg.ProfileCacheTTL))
	return redisadapter.NewCachedStore(store, rdb, cfg.ProfileCacheTTL, log), closeAll, nil
}
