// Package customer holds the customer entity: the owner of accounts.
package customer

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
)

var (
	// ErrNameRequired is returned when the customer name is blank.
	ErrNameRequired = fmt.Errorf("%w: customer name is required", domain.ErrValidation)
	// ErrIdentificationRequired is returned when the identification is blank.
	ErrIdentificationRequired = fmt.Errorf("%w: customer identification is required", domain.ErrValidation)
	// ErrInvalidIdentification is returned when the identification holds anything but digits.
	ErrInvalidIdentification = fmt.Errorf("%w: customer identification must contain only digits", domain.ErrValidation)
	// ErrDuplicateIdentification is returned when another customer already uses the identification.
	ErrDuplicateIdentification = fmt.Errorf("%w: customer identification already registered", domain.ErrAlreadyExists)
	// ErrCustomerNotFound is returned when a customer cannot be found.
	ErrCustomerNotFound = fmt.Errorf("%w: customer not found", domain.ErrNotFound)
)

// Customer is a person or entity that owns accounts.
// Customers are immutable after creation and never deleted.
type Customer struct {
	ID             int64
	Name           string
	Identification string
	CreatedAt      time.Time
}

// New validates and normalizes the input and returns an unsaved Customer.
// Name and identification are trimmed; the identification must be digits only.
func New(name, identification string) (*Customer, error) {
	name = strings.TrimSpace(name)
	identification = strings.TrimSpace(identification)
	if name == "" {
		return nil, ErrNameRequired
	}
	if identification == "" {
		return nil, ErrIdentificationRequired
	}
	for _, r := range identification {
		if r < '0' || r > '9' {
			return nil, ErrInvalidIdentification
		}
	}
	return &Customer{
		Name:           name,
		Identification: identification,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
