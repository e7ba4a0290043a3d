package account

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionTypeTransfer is the type recorded for account-to-account transfers.
const TransactionTypeTransfer = "Transfer"

// Transaction is an immutable ledger entry written once per committed transfer.
type Transaction struct {
	ID                   int64
	Reference            uuid.UUID
	Amount               decimal.Decimal
	Timestamp            time.Time
	Type                 string
	Description          string
	OriginAccountID      int64
	DestinationAccountID int64
}

// NewTransfer builds the ledger entry for moving amount from origin to destination at the given time.
func NewTransfer(origin, destination *Account, amount decimal.Decimal, at time.Time) (*Transaction, error) {
	if origin == nil || destination == nil {
		return nil, ErrNilAccount
	}
	return &Transaction{
		Reference:            uuid.New(),
		Amount:               amount,
		Timestamp:            at.UTC(),
		Type:                 TransactionTypeTransfer,
		Description:          fmt.Sprintf("Transfer from %s to %s", origin.Number, destination.Number),
		OriginAccountID:      origin.ID,
		DestinationAccountID: destination.ID,
	}, nil
}

// NewTransactionFromData hydrates a Transaction from stored fields.
func NewTransactionFromData(
	id int64,
	reference uuid.UUID,
	amount decimal.Decimal,
	timestamp time.Time,
	txType, description string,
	originAccountID, destinationAccountID int64,
) *Transaction {
	return &Transaction{
		ID:                   id,
		Reference:            reference,
		Amount:               amount,
		Timestamp:            timestamp,
		Type:                 txType,
		Description:          description,
		OriginAccountID:      originAccountID,
		DestinationAccountID: destinationAccountID,
	}
}
