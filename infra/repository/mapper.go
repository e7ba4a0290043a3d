package repository

import (
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/google/uuid"
)

func mapCustomerToDomain(m *Customer) *customer.Customer {
	return &customer.Customer{
		ID:             m.ID,
		Name:           m.Name,
		Identification: m.Identification,
		CreatedAt:      m.CreatedAt,
	}
}

func mapCustomerToModel(c *customer.Customer) *Customer {
	return &Customer{
		ID:             c.ID,
		Name:           c.Name,
		Identification: c.Identification,
		CreatedAt:      c.CreatedAt,
	}
}

func mapAccountToDomain(m *Account) *account.Account {
	return &account.Account{
		ID:         m.ID,
		Number:     m.Number,
		Balance:    m.Balance,
		Active:     m.Active,
		CustomerID: m.CustomerID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func mapAccountToModel(a *account.Account) *Account {
	return &Account{
		ID:         a.ID,
		Number:     a.Number,
		Balance:    a.Balance,
		Active:     a.Active,
		CustomerID: a.CustomerID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func mapAccountToRead(m *Account) dto.AccountRead {
	return dto.AccountRead{
		ID:         m.ID,
		Number:     m.Number,
		Balance:    m.Balance,
		Active:     m.Active,
		CustomerID: m.CustomerID,
		CreatedAt:  m.CreatedAt,
	}
}

func mapTransactionToDomain(m *Transaction) (*account.Transaction, error) {
	ref, err := uuid.Parse(m.Reference)
	if err != nil {
		return nil, err
	}
	return account.NewTransactionFromData(
		m.ID,
		ref,
		m.Amount,
		m.Timestamp,
		m.Type,
		m.Description,
		m.OriginAccountID,
		m.DestinationAccountID,
	), nil
}

func mapTransactionToModel(t *account.Transaction) *Transaction {
	return &Transaction{
		ID:                   t.ID,
		Reference:            t.Reference.String(),
		Amount:               t.Amount,
		Timestamp:            t.Timestamp,
		Type:                 t.Type,
		Description:          t.Description,
		OriginAccountID:      t.OriginAccountID,
		DestinationAccountID: t.DestinationAccountID,
	}
}
