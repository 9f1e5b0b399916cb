package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists = errors.New("account_already_exists")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrUnknownInstrument    = errors.New("unknown_instrument")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrOrderNotCancellable  = errors.New("order_not_cancellable")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientShares   = errors.New("insufficient_shares")

	// ErrPersistence wraps failures from the persistence collaborator.
	// A matching loop halts at the failing trade; trades already settled
	// are never rolled back.
	ErrPersistence = errors.New("persistence_failure")
)

// ValidationError represents a malformed request, rejected before any
// book or balance mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
