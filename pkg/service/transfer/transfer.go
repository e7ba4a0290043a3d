// Package transfer implements the account transfer engine: an atomic move of
// funds between two accounts that also appends one ledger entry.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/amirasaad/ledger/pkg/service/transfer"

// Service moves funds between accounts.
type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	logger   *slog.Logger
	tracer   trace.Tracer
	clock    func() time.Time
	store    cache.Store
	ttl      time.Duration
	inflight singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for transaction timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithTracerProvider sets the tracer provider. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// WithEventBus sets the bus that receives TransferCompleted after each commit.
func WithEventBus(bus eventbus.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithIdempotencyStore enables TransferOnce, remembering keys for ttl.
func WithIdempotencyStore(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.ttl = ttl
	}
}

// New creates a transfer Service.
func New(uow repository.UnitOfWork, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		uow:    uow,
		logger: logger.With("service", "transfer"),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		clock:  time.Now,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transfer moves amount from the origin account to the destination account and
// records the ledger entry, all in one serializable unit of work.
//
// Checks run in this order and stop at the first failure:
//   - origin and destination differ (account.ErrSameAccount)
//   - both accounts exist (account.ErrAccountNotFound)
//   - both accounts are active (account.ErrInactiveAccount)
//   - amount is positive with at most two decimals (account.ErrInvalidAmount)
//   - the origin balance covers amount (account.ErrInsufficientFunds)
//
// A conflicting concurrent transaction surfaces as domain.ErrConcurrencyConflict;
// nothing was written and the caller may retry.
func (s *Service) Transfer(
	ctx context.Context,
	originAccountID, destinationAccountID int64,
	amount decimal.Decimal,
) (*account.Transaction, error) {
	return s.execute(ctx, originAccountID, destinationAccountID, amount, "")
}

func (s *Service) execute(
	ctx context.Context,
	originAccountID, destinationAccountID int64,
	amount decimal.Decimal,
	idempotencyKey string,
) (*account.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Transfer", trace.WithAttributes(
		attribute.Int64("transfer.origin_account_id", originAccountID),
		attribute.Int64("transfer.destination_account_id", destinationAccountID),
		attribute.String("transfer.amount", amount.String()),
	))
	defer span.End()

	logger := s.logger.With(
		"origin", originAccountID,
		"destination", destinationAccountID,
		"amount", amount.String(),
	)
	if idempotencyKey != "" {
		logger = logger.With("idempotency_key", idempotencyKey)
	}
	logger.Info("Transfer started")

	tx, err := s.transfer(ctx, originAccountID, destinationAccountID, amount)
	if err != nil {
		kind := domain.KindOf(err)
		span.SetAttributes(attribute.String("error.kind", kind))
		span.SetStatus(codes.Error, "transfer failed: "+err.Error())
		span.RecordError(err)
		if kind == "internal" || domain.IsRetryable(err) {
			logger.Error("Transfer failed", "kind", kind, "error", err)
		} else {
			logger.Warn("Transfer rejected", "kind", kind, "error", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("transfer.reference", tx.Reference.String()))
	logger.Info("Transfer successful", "reference", tx.Reference, "transactionID", tx.ID)
	s.publish(ctx, tx, idempotencyKey)
	return tx, nil
}

func (s *Service) transfer(
	ctx context.Context,
	originAccountID, destinationAccountID int64,
	amount decimal.Decimal,
) (*account.Transaction, error) {
	if originAccountID == destinationAccountID {
		return nil, account.ErrSameAccount
	}

	var entry *account.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		locked, err := accounts.LockForUpdate(ctx, originAccountID, destinationAccountID)
		if err != nil {
			return err
		}
		origin, ok := locked[originAccountID]
		if !ok {
			return fmt.Errorf("origin %d: %w", originAccountID, account.ErrAccountNotFound)
		}
		destination, ok := locked[destinationAccountID]
		if !ok {
			return fmt.Errorf("destination %d: %w", destinationAccountID, account.ErrAccountNotFound)
		}
		if err := origin.ValidateTransfer(destination, amount); err != nil {
			return err
		}
		if err := origin.Debit(amount); err != nil {
			return err
		}
		if err := destination.Credit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, origin.ID, origin.Balance); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, destination.ID, destination.Balance); err != nil {
			return err
		}

		entry, err = account.NewTransfer(origin, destination, amount, s.clock())
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Create(ctx, entry)
	}, repository.Serializable())
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) publish(ctx context.Context, tx *account.Transaction, idempotencyKey string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Emit(ctx, events.TransferCompleted{
		Reference:            tx.Reference,
		OriginAccountID:      tx.OriginAccountID,
		DestinationAccountID: tx.DestinationAccountID,
		Amount:               tx.Amount,
		Timestamp:            tx.Timestamp,
		IdempotencyKey:       idempotencyKey,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("TransferCompleted publish failed", "reference", tx.Reference, "error", err)
	}
}
