package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := mapAccountToModel(a)
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return account.ErrDuplicateAccountNumber
	case errors.Is(err, domain.ErrInvalidReference):
		return customer.ErrCustomerNotFound
	case err != nil:
		return err
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*account.Account, error) {
	var m Account
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapAccountToDomain(&m), nil
}

// LockForUpdate reads the accounts with SELECT ... FOR UPDATE ordered by id so
// that concurrent transfers over the same pair acquire locks in the same order.
// SQLite has no row locks; its writer lock serializes transactions instead.
func (r *accountRepository) LockForUpdate(ctx context.Context, ids ...int64) (map[int64]*account.Account, error) {
	lockIDs := slices.Clone(ids)
	slices.Sort(lockIDs)
	lockIDs = slices.Compact(lockIDs)

	q := r.db.WithContext(ctx)
	if supportsRowLocks(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var models []Account
	if err := WrapError(func() error {
		return q.Where("id IN ?", lockIDs).Order("id").Find(&models).Error
	}); err != nil {
		return nil, err
	}
	out := make(map[int64]*account.Account, len(models))
	for i := range models {
		out[models[i].ID] = mapAccountToDomain(&models[i])
	}
	return out, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	var res *gorm.DB
	err := WrapError(func() error {
		res = r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).
			Updates(map[string]any{"balance": balance, "updated_at": time.Now().UTC()})
		return res.Error
	})
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) Deactivate(ctx context.Context, id int64) error {
	var res *gorm.DB
	err := WrapError(func() error {
		res = r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).
			Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
		return res.Error
	})
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

type accountWithOwnerRow struct {
	ID           int64
	Number       string
	Balance      decimal.Decimal
	Active       bool
	CustomerID   int64
	CreatedAt    time.Time
	CustomerName string
}

func (r *accountRepository) ListActiveWithOwner(ctx context.Context) ([]*dto.AccountWithOwner, error) {
	var rows []accountWithOwnerRow
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Table("accounts").
			Select("accounts.id, accounts.number, accounts.balance, accounts.active, " +
				"accounts.customer_id, accounts.created_at, customers.name AS customer_name").
			Joins("JOIN customers ON customers.id = accounts.customer_id").
			Where("accounts.active = ?", true).
			Order("accounts.id").
			Scan(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*dto.AccountWithOwner, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		out = append(out, &dto.AccountWithOwner{
			AccountRead: dto.AccountRead{
				ID:         row.ID,
				Number:     row.Number,
				Balance:    row.Balance,
				Active:     row.Active,
				CustomerID: row.CustomerID,
				CreatedAt:  row.CreatedAt,
			},
			CustomerName: row.CustomerName,
		})
	}
	return out, nil
}

func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}
