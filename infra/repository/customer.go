package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a customer repository bound to db.
func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	m := mapCustomerToModel(c)
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return customer.ErrDuplicateIdentification
	}
	if err != nil {
		return err
	}
	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	var m Customer
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, customer.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapCustomerToDomain(&m), nil
}

func (r *customerRepository) ListWithActiveAccounts(ctx context.Context) ([]*dto.CustomerWithAccounts, error) {
	var customers []Customer
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Order("id").Find(&customers).Error
	}); err != nil {
		return nil, err
	}
	var accounts []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&accounts).Error
	}); err != nil {
		return nil, err
	}

	byCustomer := make(map[int64][]dto.AccountRead, len(customers))
	for i := range accounts {
		byCustomer[accounts[i].CustomerID] = append(byCustomer[accounts[i].CustomerID], mapAccountToRead(&accounts[i]))
	}
	result := make([]*dto.CustomerWithAccounts, 0, len(customers))
	for i := range customers {
		c := &customers[i]
		owned := byCustomer[c.ID]
		if owned == nil {
			owned = []dto.AccountRead{}
		}
		result = append(result, &dto.CustomerWithAccounts{
			ID:             c.ID,
			Name:           c.Name,
			Identification: c.Identification,
			CreatedAt:      c.CreatedAt,
			Accounts:       owned,
		})
	}
	return result, nil
}
