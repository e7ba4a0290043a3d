package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by balances and amounts.
const Scale = 2

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = fmt.Errorf("%w: account not found", domain.ErrNotFound)

	// ErrSameAccount is returned when a transfer is attempted from an account to itself.
	ErrSameAccount = fmt.Errorf("%w: cannot transfer to same account", domain.ErrInvalidOperation)

	// ErrInactiveAccount is returned when an inactive account takes part in a transfer.
	ErrInactiveAccount = fmt.Errorf("%w: account is inactive", domain.ErrBusinessRule)

	// ErrInvalidAmount is returned for non-positive transfer amounts, negative
	// initial balances, or values with more than two fractional digits.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", domain.ErrBusinessRule)

	// ErrInsufficientFunds is returned when the origin balance does not cover a transfer.
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", domain.ErrBusinessRule)

	// ErrDuplicateAccountNumber is returned when the account number is already taken.
	ErrDuplicateAccountNumber = fmt.Errorf("%w: account number already exists", domain.ErrAlreadyExists)

	// ErrNumberRequired is returned when the account number is blank.
	ErrNumberRequired = fmt.Errorf("%w: account number is required", domain.ErrValidation)

	// ErrCustomerRequired is returned when an account is built without an owner.
	ErrCustomerRequired = fmt.Errorf("%w: account owner is required", domain.ErrValidation)

	// ErrNilAccount is returned when a nil account is provided to a transfer or other operation.
	ErrNilAccount = fmt.Errorf("%w: nil account", domain.ErrInvalidOperation)
)

// Account is a monetary account owned by a customer.
//
// Invariants:
// - Balance is never negative and carries at most Scale fractional digits.
// - Number is unique across all accounts.
// - Once inactive, an account never becomes active again.
type Account struct {
	ID         int64
	Number     string
	Balance    decimal.Decimal
	Active     bool
	CustomerID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id         int64
	number     string
	balance    decimal.Decimal
	active     bool
	customerID int64
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a new Builder for an active account with a zero balance.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		active:    true,
		balance:   decimal.Zero,
		createdAt: now,
		updatedAt: now,
	}
}

// WithID sets the ID. Used when hydrating an existing account from the store.
func (b *Builder) WithID(id int64) *Builder {
	b.id = id
	return b
}

// WithNumber sets the account number. This is a mandatory field.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithCustomerID sets the owner. This is a mandatory field.
func (b *Builder) WithCustomerID(customerID int64) *Builder {
	b.customerID = customerID
	return b
}

// WithBalance sets the initial balance.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithActive sets the active flag. Used when hydrating from the store.
func (b *Builder) WithActive(active bool) *Builder {
	b.active = active
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Account.
// The number is trimmed before validation.
func (b *Builder) Build() (*Account, error) {
	number := strings.TrimSpace(b.number)
	if number == "" {
		return nil, ErrNumberRequired
	}
	if b.customerID <= 0 {
		return nil, ErrCustomerRequired
	}
	if b.balance.IsNegative() || !HasValidScale(b.balance) {
		return nil, ErrInvalidAmount
	}
	return &Account{
		ID:         b.id,
		Number:     number,
		Balance:    b.balance,
		Active:     b.active,
		CustomerID: b.customerID,
		CreatedAt:  b.createdAt,
		UpdatedAt:  b.updatedAt,
	}, nil
}

// HasValidScale reports whether v has at most Scale fractional digits.
func HasValidScale(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(Scale))
}

// ValidateAmount checks that amount is a positive value with a valid scale.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !HasValidScale(amount) {
		return ErrInvalidAmount
	}
	return nil
}

// Deactivate marks the account inactive. It reports whether the state changed.
func (a *Account) Deactivate() bool {
	if !a.Active {
		return false
	}
	a.Active = false
	a.UpdatedAt = time.Now().UTC()
	return true
}

// ValidateTransfer checks that amount can move from a to dest.
// Checks run in a fixed order: same account, active state, amount, funds.
func (a *Account) ValidateTransfer(dest *Account, amount decimal.Decimal) error {
	if a == nil || dest == nil {
		return ErrNilAccount
	}
	if a.ID == dest.ID {
		return ErrSameAccount
	}
	if !a.Active || !dest.Active {
		return ErrInactiveAccount
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// Debit subtracts amount from the balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now().UTC()
	return nil
}
