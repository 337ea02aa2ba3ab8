package service

import (
	"errors"
	"fmt"
)

// Error kinds the web layer maps onto HTTP statuses. Services wrap these
// with detail via fmt.Errorf("...: %w", ...), so callers match with
// errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrConflict        = errors.New("conflict")
)

func validationError(field, msg string) error {
	return fmt.Errorf("%s: %s: %w", field, msg, ErrValidation)
}
