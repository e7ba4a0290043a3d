package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the GORM model for the customers table.
type Customer struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"size:150;not null"`
	Identification string `gorm:"size:20;not null;uniqueIndex:idx_customers_identification"`
	CreatedAt      time.Time
}

func (Customer) TableName() string { return "customers" }

// Account is the GORM model for the accounts table.
type Account struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	Number     string          `gorm:"size:30;not null;uniqueIndex:idx_accounts_number"`
	Balance    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0"`
	Active     bool            `gorm:"not null;default:true;index"`
	CustomerID int64           `gorm:"not null;index"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Account) TableName() string { return "accounts" }

// Transaction is the GORM model for the append-only transactions table.
type Transaction struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement"`
	Reference            string          `gorm:"size:36;not null;uniqueIndex:idx_transactions_reference"`
	Amount               decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Timestamp            time.Time       `gorm:"column:timestamp;not null;index"`
	Type                 string          `gorm:"size:20;not null"`
	Description          string          `gorm:"size:255;not null"`
	OriginAccountID      int64           `gorm:"not null;index"`
	OriginAccount        *Account        `gorm:"foreignKey:OriginAccountID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	DestinationAccountID int64           `gorm:"not null;index"`
	DestinationAccount   *Account        `gorm:"foreignKey:DestinationAccountID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (Transaction) TableName() string { return "transactions" }
