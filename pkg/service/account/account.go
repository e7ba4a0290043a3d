// Package account provides the account repository operations: registering
// customers, opening and deactivating accounts, and the read projections used by
// the outer surfaces. Every operation runs in its own unit of work.
package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/shopspring/decimal"
)

// Service provides customer and account lifecycle operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, logger: logger.With("service", "account")}
}

// logFailure logs expected outcomes such as duplicates or missing rows at
// Warn and store or internal failures at Error.
func logFailure(logger *slog.Logger, op string, err error) {
	kind := domain.KindOf(err)
	if kind == "internal" || domain.IsRetryable(err) {
		logger.Error(op+" failed", "kind", kind, "error", err)
		return
	}
	logger.Warn(op+" rejected", "kind", kind, "error", err)
}

// CreateCustomer registers a customer. Name and identification are trimmed;
// the identification must be digits only and unique.
func (s *Service) CreateCustomer(ctx context.Context, name, identification string) (c *customer.Customer, err error) {
	logger := s.logger.With("identification", strings.TrimSpace(identification))
	logger.Info("CreateCustomer started")

	c, err = customer.New(name, identification)
	if err != nil {
		logger.Warn("CreateCustomer failed: validation error", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CustomerRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, c)
	})
	if err != nil {
		logFailure(logger, "CreateCustomer", err)
		return nil, err
	}
	logger.Info("CreateCustomer successful", "customerID", c.ID)
	return c, nil
}

// CreateAccount opens an active account for an existing customer.
func (s *Service) CreateAccount(
	ctx context.Context,
	customerID int64,
	accountNumber string,
	initialBalance decimal.Decimal,
) (a *account.Account, err error) {
	logger := s.logger.With("customerID", customerID, "number", strings.TrimSpace(accountNumber))
	logger.Info("CreateAccount started")

	a, err = account.New().
		WithCustomerID(customerID).
		WithNumber(accountNumber).
		WithBalance(initialBalance).
		Build()
	if err != nil {
		logger.Warn("CreateAccount failed: validation error", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		customers, err := uow.CustomerRepository()
		if err != nil {
			return err
		}
		if _, err := customers.Get(ctx, customerID); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return accounts.Create(ctx, a)
	})
	if err != nil {
		logFailure(logger, "CreateAccount", err)
		return nil, err
	}
	logger.Info("CreateAccount successful", "accountID", a.ID)
	return a, nil
}

// DeactivateAccount marks the account inactive. Deactivating an inactive
// account succeeds without change; a missing account is account.ErrAccountNotFound.
func (s *Service) DeactivateAccount(ctx context.Context, accountID int64) error {
	logger := s.logger.With("accountID", accountID)
	logger.Info("DeactivateAccount started")

	changed := false
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		locked, err := repo.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		a, ok := locked[accountID]
		if !ok {
			return account.ErrAccountNotFound
		}
		if changed = a.Deactivate(); !changed {
			return nil
		}
		return repo.Deactivate(ctx, accountID)
	})
	if err != nil {
		logFailure(logger, "DeactivateAccount", err)
		return err
	}
	logger.Info("DeactivateAccount successful", "changed", changed)
	return nil
}

// GetAccount returns the account in any state.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (a *account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = repo.Get(ctx, accountID)
		return err
	}, repository.ReadOnly())
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListCustomersWithAccounts returns every customer with its active accounts.
func (s *Service) ListCustomersWithAccounts(ctx context.Context) (out []*dto.CustomerWithAccounts, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CustomerRepository()
		if err != nil {
			return err
		}
		out, err = repo.ListWithActiveAccounts(ctx)
		return err
	}, repository.ReadOnly())
	if err != nil {
		s.logger.Error("ListCustomersWithAccounts failed", "error", err)
		return nil, err
	}
	return out, nil
}

// ListActiveAccountsWithOwner returns active accounts with their owner's name.
func (s *Service) ListActiveAccountsWithOwner(ctx context.Context) (out []*dto.AccountWithOwner, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		out, err = repo.ListActiveWithOwner(ctx)
		return err
	}, repository.ReadOnly())
	if err != nil {
		s.logger.Error("ListActiveAccountsWithOwner failed", "error", err)
		return nil, err
	}
	return out, nil
}

// ListTransactions returns the ledger entries touching the account, newest first.
func (s *Service) ListTransactions(ctx context.Context, accountID int64) (out []*account.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if _, err := accounts.Get(ctx, accountID); err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		out, err = txs.ListByAccount(ctx, accountID)
		return err
	}, repository.ReadOnly())
	if err != nil {
		return nil, err
	}
	return out, nil
}
