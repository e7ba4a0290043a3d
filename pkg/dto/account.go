package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized view of an account.
type AccountRead struct {
	ID         int64
	Number     string
	Balance    decimal.Decimal
	Active     bool
	CustomerID int64
	CreatedAt  time.Time
}

// AccountWithOwner is an active account joined with its owner's name.
type AccountWithOwner struct {
	AccountRead
	CustomerName string
}

// CustomerWithAccounts is a customer and its active accounts.
type CustomerWithAccounts struct {
	ID             int64
	Name           string
	Identification string
	CreatedAt      time.Time
	Accounts       []AccountRead
}
