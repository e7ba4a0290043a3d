package initializer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	infracache "github.com/amirasaad/ledger/infra/cache"
	infraeventbus "github.com/amirasaad/ledger/infra/eventbus"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEventBus_DefaultsToMemory(t *testing.T) {
	bus, err := initEventBus(&config.App{}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infraeventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_RedisRequiresURL(t *testing.T) {
	cfg := &config.App{
		Redis:    &config.Redis{},
		EventBus: &config.EventBus{Driver: "redis"},
	}
	_, err := initEventBus(cfg, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitEventBus_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.App{
		Redis:    &config.Redis{URL: "redis://" + mr.Addr()},
		EventBus: &config.EventBus{Driver: "redis", Group: "ledger"},
	}
	bus, err := initEventBus(cfg, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infraeventbus.RedisEventBus{}, bus)
	require.NoError(t, bus.(*infraeventbus.RedisEventBus).Close())
}

func TestInitEventBus_RedisUnreachableFallsBackToMemory(t *testing.T) {
	cfg := &config.App{
		Redis:    &config.Redis{URL: "redis://127.0.0.1:1/0"},
		EventBus: &config.EventBus{Driver: "redis"},
	}
	bus, err := initEventBus(cfg, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infraeventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_UnknownDriver(t *testing.T) {
	_, err := initEventBus(&config.App{EventBus: &config.EventBus{Driver: "kafka"}}, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitCache(t *testing.T) {
	ctx := context.Background()

	store, err := initCache(ctx, &config.App{Redis: &config.Redis{}}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infracache.MemoryCache{}, store)
	_ = store.(*infracache.MemoryCache).Close()

	mr := miniredis.RunT(t)
	store, err = initCache(ctx, &config.App{Redis: &config.Redis{URL: "redis://" + mr.Addr(), KeyPrefix: "t:"}}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infracache.RedisCache{}, store)
	_ = store.(*infracache.RedisCache).Close()

	_, err = initCache(ctx, &config.App{Redis: &config.Redis{URL: "redis://127.0.0.1:1/0"}}, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitializeDependencies_SQLite(t *testing.T) {
	cfg := &config.App{
		Env: "test",
		Log: &config.Log{Format: "text", Prefix: "[test]"},
		DB: &config.DB{
			Url:          "sqlite://file:init?mode=memory&cache=shared",
			MaxOpenConns: 1,
			AutoMigrate:  true,
			Retry:        &config.Retry{MaxAttempts: 1},
		},
		Redis:       &config.Redis{},
		EventBus:    &config.EventBus{Driver: "memory"},
		Idempotency: &config.Idempotency{},
	}
	deps, cleanup, err := InitializeDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })

	assert.NotNil(t, deps.Uow)
	assert.NotNil(t, deps.EventBus)
	assert.NotNil(t, deps.Cache)
	assert.NotNil(t, deps.Logger)
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "logfmt"} {
		var buf bytes.Buffer
		logger := newLogger(&buf, &config.Log{Format: format, Prefix: "[ledger]"})
		logger.Info("hello", "kind", "validation")
		out := buf.String()
		assert.True(t, strings.Contains(out, "hello"), "format %s: %q", format, out)
		assert.Contains(t, out, "validation")
	}
}
