package domain

import "errors"

// Common domain errors. Entity packages wrap these kinds with their own
// sentinels so callers can match either the specific error or its kind.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrInvalidOperation is returned when an operation is structurally invalid
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrBusinessRule is returned when an operation violates a business rule
	ErrBusinessRule = errors.New("business rule violation")
	// ErrInvalidReference is returned when a write references a missing row
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConcurrencyConflict is returned when the store aborts a transaction
	// because of a conflicting concurrent one. The operation can be retried.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrStoreUnavailable is returned when the store cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRetryable reports whether retrying the whole operation from scratch may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrStoreUnavailable)
}

// KindOf returns a short label for the error kind, for logs and span attributes.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "duplicate_key"
	case errors.Is(err, ErrInvalidOperation):
		return "invalid_operation"
	case errors.Is(err, ErrBusinessRule):
		return "business_rule"
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "internal"
}
