package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// UoW implements repository.UnitOfWork on top of GORM.
// The root UoW holds only the connection pool; Do hands fn a child UoW bound
// to the open transaction so every repository it returns shares that session.
type UoW struct {
	db     *gorm.DB
	tx     *gorm.DB
	retry  *config.Retry
	logger *slog.Logger
}

// Option configures a UoW.
type Option func(*UoW)

// WithRetry sets the policy used to retry transient faults when opening a transaction.
func WithRetry(cfg *config.Retry) Option {
	return func(u *UoW) { u.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *UoW) { u.logger = logger }
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB, opts ...Option) *UoW {
	u := &UoW{db: db, retry: &DefaultRetry, logger: slog.Default()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Do runs fn inside a transaction. Only the begin step is retried: once fn
// has started, any failure rolls back and is returned to the caller.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error, opts ...repository.TxOption) (err error) {
	if u.tx != nil {
		return fn(u)
	}

	o := repository.BuildTxOptions(opts...)
	tx, err := u.begin(ctx, &sql.TxOptions{Isolation: o.Isolation, ReadOnly: o.ReadOnly})
	if err != nil {
		return err
	}

	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			u.logger.Error("transaction rollback failed", "error", rbErr)
		}
	}()

	if err = fn(&UoW{db: u.db, tx: tx, retry: u.retry, logger: u.logger}); err != nil {
		return MapGormErrorToDomain(err)
	}
	if err = tx.Commit().Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	done = true
	return nil
}

func (u *UoW) begin(ctx context.Context, opts *sql.TxOptions) (*gorm.DB, error) {
	var tx *gorm.DB
	op := func() error {
		tx = u.db.WithContext(ctx).Begin(opts)
		if tx.Error == nil {
			return nil
		}
		mapped := MapGormErrorToDomain(tx.Error)
		if IsTransient(tx.Error) {
			return mapped
		}
		return backoff.Permanent(mapped)
	}
	notify := func(err error, wait time.Duration) {
		u.logger.Warn("begin transaction failed, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(NewBackOff(u.retry), ctx), notify); err != nil {
		return nil, err
	}
	return tx, nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) CustomerRepository() (repository.CustomerRepository, error) {
	return NewCustomerRepository(u.session()), nil
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return NewAccountRepository(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return NewTransactionRepository(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
