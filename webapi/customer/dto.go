package customer

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/amirasaad/ledger/pkg/dto"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/shopspring/decimal"
)

//revive:disable

// CreateCustomerRequest represents the request body for registering a customer.
type CreateCustomerRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Identification string `json:"identification" validate:"required,max=64"`
}

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Number         string           `json:"number" validate:"required,max=64"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

// CustomerDTO is the API representation of a customer.
type CustomerDTO struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Identification string              `json:"identification"`
	CreatedAt      time.Time           `json:"created_at"`
	Accounts       []common.AccountDTO `json:"accounts,omitempty"`
}

func ToCustomerDTO(c *customer.Customer) CustomerDTO {
	return CustomerDTO{
		ID:             c.ID,
		Name:           c.Name,
		Identification: c.Identification,
		CreatedAt:      c.CreatedAt,
	}
}

func FromCustomerWithAccounts(c *dto.CustomerWithAccounts) CustomerDTO {
	out := CustomerDTO{
		ID:             c.ID,
		Name:           c.Name,
		Identification: c.Identification,
		CreatedAt:      c.CreatedAt,
		Accounts:       make([]common.AccountDTO, 0, len(c.Accounts)),
	}
	for _, a := range c.Accounts {
		out.Accounts = append(out.Accounts, common.FromAccountRead(a))
	}
	return out
}
