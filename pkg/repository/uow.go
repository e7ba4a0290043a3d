package repository

import (
	"context"
	"database/sql"
)

// TxOptions configures the transaction opened by UnitOfWork.Do.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// TxOption mutates TxOptions.
type TxOption func(*TxOptions)

// Serializable runs the unit of work at serializable isolation.
func Serializable() TxOption {
	return func(o *TxOptions) { o.Isolation = sql.LevelSerializable }
}

// ReadOnly marks the unit of work as read-only.
func ReadOnly() TxOption {
	return func(o *TxOptions) { o.ReadOnly = true }
}

// BuildTxOptions applies opts over the driver defaults.
func BuildTxOptions(opts ...TxOption) TxOptions {
	var o TxOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UnitOfWork defines the contract for transactional work and repository access.
//
// Do opens a transaction, runs fn with a UnitOfWork bound to it, and commits
// when fn returns nil. Any error or panic from fn rolls the transaction back.
// Repositories obtained from the UnitOfWork passed to fn share its transaction.
// Calling Do on a UnitOfWork that is already inside a transaction reuses it.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error, opts ...TxOption) error

	CustomerRepository() (CustomerRepository, error)
	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
}
