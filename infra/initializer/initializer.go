package initializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/infra"
	infracache "github.com/amirasaad/ledger/infra/cache"
	infraeventbus "github.com/amirasaad/ledger/infra/eventbus"
	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/eventbus"
)

// InitializeDependencies opens the store and builds the shared dependencies.
// The returned cleanup releases them in reverse order of creation.
func InitializeDependencies(ctx context.Context, cfg *config.App) (
	deps *app.Deps,
	cleanup func() error,
	err error,
) {
	logger := setupLogger(cfg.Log)
	var closers []io.Closer
	cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i].Close())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = cleanup()
		}
	}()

	db, err := infra.NewDBConnection(ctx, cfg.DB, cfg.Env, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, sqlDB)

	deps = &app.Deps{Logger: logger}
	deps.Uow = infrarepo.NewUoW(db, infrarepo.WithRetry(cfg.DB.Retry), infrarepo.WithLogger(logger))

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if c, ok := bus.(io.Closer); ok {
		closers = append(closers, c)
	}
	deps.EventBus = bus

	store, err := initCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize idempotency store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}
	deps.Cache = store

	return deps, cleanup, nil
}

// initEventBus picks the bus from EVENT_BUS_DRIVER. An unreachable Redis
// falls back to the in-memory bus.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := "memory"
	group := "ledger"
	var redisOpts []infraeventbus.RedisOption
	if cfg.EventBus != nil {
		if cfg.EventBus.Consumer != "" {
			redisOpts = append(redisOpts, infraeventbus.WithConsumerName(cfg.EventBus.Consumer))
		}
		if cfg.EventBus.ClaimIdle > 0 {
			redisOpts = append(redisOpts, infraeventbus.WithClaimMinIdle(cfg.EventBus.ClaimIdle))
		}
		if cfg.EventBus.Driver != "" {
			driver = cfg.EventBus.Driver
		}
		if cfg.EventBus.Group != "" {
			group = cfg.EventBus.Group
		}
	}

	switch driver {
	case "memory":
		return infraeventbus.NewWithMemory(logger), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, errors.New("redis event bus requires REDIS_URL")
		}
		bus, err := infraeventbus.NewWithRedis(cfg.Redis.URL, group, logger, redisOpts...)
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
			return infraeventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", driver)
	}
}

// initCache uses Redis when REDIS_URL is set and memory otherwise.
func initCache(ctx context.Context, cfg *config.App, logger *slog.Logger) (cache.Store, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return infracache.NewMemoryCache(time.Minute), nil
	}
	store, err := infracache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Redis idempotency store connected")
	return store, nil
}
