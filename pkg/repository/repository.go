package repository

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines data access for customers.
// Customers are never updated or deleted, so no such methods exist.
type CustomerRepository interface {
	// Create inserts c and sets its ID.
	Create(ctx context.Context, c *customer.Customer) error
	// Get returns customer.ErrCustomerNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*customer.Customer, error)
	// ListWithActiveAccounts returns every customer with only its active accounts,
	// ordered by customer id.
	ListWithActiveAccounts(ctx context.Context) ([]*dto.CustomerWithAccounts, error)
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts a and sets its ID.
	Create(ctx context.Context, a *account.Account) error
	// Get returns the account in any state, or account.ErrAccountNotFound.
	Get(ctx context.Context, id int64) (*account.Account, error)
	// LockForUpdate reads the given accounts taking row locks in ascending id
	// order. Missing ids are absent from the result map.
	LockForUpdate(ctx context.Context, ids ...int64) (map[int64]*account.Account, error)
	// UpdateBalance persists a new balance for the account.
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	// Deactivate sets the account inactive.
	Deactivate(ctx context.Context, id int64) error
	// ListActiveWithOwner returns active accounts joined with owner name, ordered by account id.
	ListActiveWithOwner(ctx context.Context) ([]*dto.AccountWithOwner, error)
}

// TransactionRepository defines data access for the append-only transaction ledger.
// Entries are never updated or deleted.
type TransactionRepository interface {
	// Create inserts tx and sets its ID.
	Create(ctx context.Context, tx *account.Transaction) error
	// GetByReference returns domain.ErrNotFound for unknown references.
	GetByReference(ctx context.Context, ref uuid.UUID) (*account.Transaction, error)
	// ListByAccount returns transactions where the account is origin or
	// destination, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*account.Transaction, error)
}
