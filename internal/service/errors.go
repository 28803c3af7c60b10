package service

import (
	"errors"
	"fmt"
)

// Errors returned by the reservation and admin services.  Handlers map
// each of them to a stable HTTP status and error code.
var (
	ErrAlreadyReserved  = errors.New("slot already reserved")
	ErrNotAuthorized    = errors.New("name and contact do not match the reservation")
	ErrCannotModifyPaid = errors.New("reservation is already paid")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrNotFound         = errors.New("reservation not found")
	ErrNoPaidEntries    = errors.New("no paid entries to draw from")
	ErrValidation       = errors.New("validation failed")
)

// ValidationError reports a missing or malformed input field.  It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// unavailable wraps a store failure so callers can match ErrStoreUnavailable
// while the log keeps the driver error.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
