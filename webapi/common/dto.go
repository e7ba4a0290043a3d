package common

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/dto"
)

//revive:disable

// AccountDTO is the API representation of an account. Balances are decimal
// strings with two fractional digits.
type AccountDTO struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	Balance    string    `json:"balance"`
	Active     bool      `json:"active"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransactionDTO is the API representation of a ledger entry.
type TransactionDTO struct {
	ID                   int64     `json:"id"`
	Reference            string    `json:"reference"`
	Amount               string    `json:"amount"`
	Timestamp            time.Time `json:"timestamp"`
	Type                 string    `json:"type"`
	Description          string    `json:"description"`
	OriginAccountID      int64     `json:"origin_account_id"`
	DestinationAccountID int64     `json:"destination_account_id"`
}

func ToAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		ID:         a.ID,
		Number:     a.Number,
		Balance:    a.Balance.StringFixed(account.Scale),
		Active:     a.Active,
		CustomerID: a.CustomerID,
		CreatedAt:  a.CreatedAt,
	}
}

func FromAccountRead(a dto.AccountRead) AccountDTO {
	return AccountDTO{
		ID:         a.ID,
		Number:     a.Number,
		Balance:    a.Balance.StringFixed(account.Scale),
		Active:     a.Active,
		CustomerID: a.CustomerID,
		CreatedAt:  a.CreatedAt,
	}
}

func ToTransactionDTO(tx *account.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                   tx.ID,
		Reference:            tx.Reference.String(),
		Amount:               tx.Amount.StringFixed(account.Scale),
		Timestamp:            tx.Timestamp,
		Type:                 tx.Type,
		Description:          tx.Description,
		OriginAccountID:      tx.OriginAccountID,
		DestinationAccountID: tx.DestinationAccountID,
	}
}
