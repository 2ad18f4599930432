package domain

import (
	"github.com/xambitlan/disclosure/internal/errors"
)

// Contact errors.
var (
	// ErrContactNotFound indicates the provider has not stored a contact record.
	ErrContactNotFound = errors.Wrap(errors.ErrNotFound, "contact not found")

	// ErrEmptyContact indicates a record without any channel.
	ErrEmptyContact = errors.Wrap(errors.ErrInvalidInput, "at least one contact channel is required")
)
