package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCart indicates the backend rejected the cart ID
	// (expired or invalidated after checkout).
	ErrInvalidCart = errors.New("invalid cart")

	// ErrBackendUnavailable indicates a network or backend failure while
	// talking to the commerce platform. Safe to retry.
	ErrBackendUnavailable = errors.New("commerce backend unavailable")
)

// ValidationError rejects a request before any state change is applied.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
