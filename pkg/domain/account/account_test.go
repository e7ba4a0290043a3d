package account

import (
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAccount(t *testing.T, id int64, number string, balance string, active bool) *Account {
	t.Helper()
	a, err := New().
		WithID(id).
		WithNumber(number).
		WithCustomerID(1).
		WithBalance(decimal.RequireFromString(balance)).
		WithActive(active).
		Build()
	require.NoError(t, err)
	return a
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		number     string
		customerID int64
		balance    string
		wantErr    error
	}{
		{name: "valid", number: "ACC-1", customerID: 1, balance: "100.50"},
		{name: "zero balance", number: "ACC-1", customerID: 1, balance: "0"},
		{name: "blank number", number: "  ", customerID: 1, balance: "0", wantErr: ErrNumberRequired},
		{name: "missing owner", number: "ACC-1", customerID: 0, balance: "0", wantErr: ErrCustomerRequired},
		{name: "negative balance", number: "ACC-1", customerID: 1, balance: "-0.01", wantErr: ErrInvalidAmount},
		{name: "too many fractional digits", number: "ACC-1", customerID: 1, balance: "1.005", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := New().
				WithNumber(tt.number).
				WithCustomerID(tt.customerID).
				WithBalance(decimal.RequireFromString(tt.balance)).
				Build()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.True(t, a.Active)
			assert.Equal(t, tt.number, a.Number)
			assert.True(t, decimal.RequireFromString(tt.balance).Equal(a.Balance))
		})
	}
}

func TestBuilder_TrimsNumber(t *testing.T) {
	a, err := New().WithNumber(" 0001 ").WithCustomerID(3).Build()
	require.NoError(t, err)
	assert.Equal(t, "0001", a.Number)
}

func TestHasValidScale(t *testing.T) {
	assert.True(t, HasValidScale(decimal.RequireFromString("10")))
	assert.True(t, HasValidScale(decimal.RequireFromString("10.1")))
	assert.True(t, HasValidScale(decimal.RequireFromString("10.12")))
	assert.True(t, HasValidScale(decimal.RequireFromString("10.120")))
	assert.False(t, HasValidScale(decimal.RequireFromString("10.121")))
}

func TestAccount_ValidateTransfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origin  *Account
		dest    *Account
		amount  string
		wantErr error
	}{
		{
			name:   "success",
			origin: mustAccount(t, 1, "A", "100", true),
			dest:   mustAccount(t, 2, "B", "0", true),
			amount: "50",
		},
		{
			name:   "exact balance",
			origin: mustAccount(t, 1, "A", "50.25", true),
			dest:   mustAccount(t, 2, "B", "0", true),
			amount: "50.25",
		},
		{
			name:    "same account wins over every other check",
			origin:  mustAccount(t, 1, "A", "0", false),
			dest:    mustAccount(t, 1, "A", "0", false),
			amount:  "-1",
			wantErr: ErrSameAccount,
		},
		{
			name:    "inactive origin",
			origin:  mustAccount(t, 1, "A", "100", false),
			dest:    mustAccount(t, 2, "B", "0", true),
			amount:  "10",
			wantErr: ErrInactiveAccount,
		},
		{
			name:    "inactive destination checked before amount",
			origin:  mustAccount(t, 1, "A", "100", true),
			dest:    mustAccount(t, 2, "B", "0", false),
			amount:  "0",
			wantErr: ErrInactiveAccount,
		},
		{
			name:    "zero amount",
			origin:  mustAccount(t, 1, "A", "100", true),
			dest:    mustAccount(t, 2, "B", "0", true),
			amount:  "0",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "amount checked before funds",
			origin:  mustAccount(t, 1, "A", "0", true),
			dest:    mustAccount(t, 2, "B", "0", true),
			amount:  "-5",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "insufficient funds",
			origin:  mustAccount(t, 1, "A", "30", true),
			dest:    mustAccount(t, 2, "B", "0", true),
			amount:  "30.01",
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "nil destination",
			origin:  mustAccount(t, 1, "A", "30", true),
			amount:  "1",
			wantErr: ErrNilAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.origin.ValidateTransfer(tt.dest, decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccount_DebitCredit(t *testing.T) {
	origin := mustAccount(t, 1, "A", "100.00", true)
	dest := mustAccount(t, 2, "B", "5.50", true)
	amount := decimal.RequireFromString("40.25")

	require.NoError(t, origin.Debit(amount))
	require.NoError(t, dest.Credit(amount))

	assert.Equal(t, "59.75", origin.Balance.StringFixed(Scale))
	assert.Equal(t, "45.75", dest.Balance.StringFixed(Scale))

	err := origin.Debit(decimal.RequireFromString("59.76"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.Equal(t, "59.75", origin.Balance.StringFixed(Scale))

	assert.ErrorIs(t, dest.Credit(decimal.Zero), ErrInvalidAmount)
}

func TestAccount_Deactivate(t *testing.T) {
	a := mustAccount(t, 1, "A", "10", true)
	before := a.UpdatedAt
	time.Sleep(time.Millisecond)

	assert.True(t, a.Deactivate())
	assert.False(t, a.Active)
	assert.True(t, a.UpdatedAt.After(before))

	assert.False(t, a.Deactivate(), "second deactivation is a no-op")
	assert.False(t, a.Active)
}

func TestNewTransfer(t *testing.T) {
	origin := mustAccount(t, 1, "001-A", "10", true)
	dest := mustAccount(t, 2, "002-B", "0", true)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("X", -5*3600))

	tx, err := NewTransfer(origin, dest, decimal.RequireFromString("7.5"), at)
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeTransfer, tx.Type)
	assert.Equal(t, "Transfer from 001-A to 002-B", tx.Description)
	assert.Equal(t, int64(1), tx.OriginAccountID)
	assert.Equal(t, int64(2), tx.DestinationAccountID)
	assert.Equal(t, time.UTC, tx.Timestamp.Location())
	assert.True(t, at.Equal(tx.Timestamp))
	assert.NotEmpty(t, tx.Reference.String())

	_, err = NewTransfer(nil, dest, decimal.NewFromInt(1), at)
	assert.ErrorIs(t, err, ErrNilAccount)
}
