// Package app assembles the ledger services from their dependencies.
package app

import (
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/amirasaad/ledger/pkg/handler/audit"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/transfer"
	"go.opentelemetry.io/otel/trace"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	// Cache holds idempotency keys. Nil disables keyed transfers.
	Cache  cache.Store
	Logger *slog.Logger
	// TracerProvider is optional; the global provider is used when nil.
	TracerProvider trace.TracerProvider
}

type App struct {
	Deps            *Deps
	Config          *config.App
	AccountService  *account.Service
	TransferService *transfer.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	a.setupEventBus()

	a.AccountService = account.NewService(deps.Uow, deps.Logger)

	opts := []transfer.Option{}
	if deps.EventBus != nil {
		opts = append(opts, transfer.WithEventBus(deps.EventBus))
	}
	if deps.Cache != nil {
		ttl := 24 * time.Hour
		if cfg != nil && cfg.Idempotency != nil && cfg.Idempotency.TTL > 0 {
			ttl = cfg.Idempotency.TTL
		}
		opts = append(opts, transfer.WithIdempotencyStore(deps.Cache, ttl))
	}
	if deps.TracerProvider != nil {
		opts = append(opts, transfer.WithTracerProvider(deps.TracerProvider))
	}
	a.TransferService = transfer.New(deps.Uow, deps.Logger, opts...)
	return a
}

func (a *App) setupEventBus() {
	if a.Deps.EventBus == nil {
		return
	}
	a.Deps.EventBus.Register(
		events.EventTypeTransferCompleted,
		audit.HandleTransferCompleted(a.Deps.Logger),
	)
}
