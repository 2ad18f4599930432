// Package errors holds the sentinel classes every domain error wraps.
// httputil maps each class to one HTTP status; use cases never pick status codes.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel classes. Wrap them with Wrap to give a domain error its meaning.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means no valid session; ErrForbidden means a valid
	// session acting outside its role or presenting a forged grant.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrGone marks an authentic grant past its lifetime.
	ErrGone = errors.New("gone")

	// ErrPaymentRequired marks a payment reference the ledger did not confirm.
	ErrPaymentRequired = errors.New("payment required")

	ErrTooManyRequests = errors.New("too many requests")
)

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message, keeping it matchable with Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
