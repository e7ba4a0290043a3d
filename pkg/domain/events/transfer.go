// Package events defines the domain events published by the ledger.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// EventTypeTransferCompleted identifies TransferCompleted events on the bus.
const EventTypeTransferCompleted = "TransferCompleted"

// TransferCompleted is emitted after a transfer has been committed.
type TransferCompleted struct {
	Reference            uuid.UUID       `json:"reference"`
	OriginAccountID      int64           `json:"origin_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Timestamp            time.Time       `json:"timestamp"`
	// IdempotencyKey is set when the transfer was submitted with one.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Type implements Event.
func (TransferCompleted) Type() string { return EventTypeTransferCompleted }

// Decoders maps each event type to a function that rebuilds it from its JSON
// payload. Transports that serialize events use it on the consuming side.
var Decoders = map[string]func([]byte) (Event, error){
	EventTypeTransferCompleted: func(b []byte) (Event, error) {
		var e TransferCompleted
		err := json.Unmarshal(b, &e)
		return e, err
	},
}
