package domain

import (
	"github.com/xambitlan/disclosure/internal/errors"
)

// Reveal request errors. State machine errors are descriptive; cryptographic
// failures surface only as the token and decryption errors of their packages.
var (
	// ErrRevealRequestNotFound indicates the request does not exist or is not visible to the actor.
	ErrRevealRequestNotFound = errors.Wrap(errors.ErrNotFound, "reveal request not found")

	// ErrServiceNotFound indicates the service is not in the directory.
	ErrServiceNotFound = errors.Wrap(errors.ErrNotFound, "service not found")

	// ErrDuplicateRequest indicates a PENDING request already exists for the (service, client) pair.
	ErrDuplicateRequest = errors.Wrap(errors.ErrConflict, "a pending reveal request already exists for this service")

	// ErrUnauthorizedActor indicates the caller is not the party allowed to perform the action.
	ErrUnauthorizedActor = errors.Wrap(errors.ErrForbidden, "actor is not allowed to perform this action")

	// ErrInvalidState indicates the action does not apply to the request's current status.
	ErrInvalidState = errors.Wrap(errors.ErrConflict, "reveal request is not in a valid state for this action")

	// ErrPaymentNotVerified indicates the payment collaborator did not confirm the payment reference.
	ErrPaymentNotVerified = errors.Wrap(errors.ErrPaymentRequired, "payment not verified")

	// ErrPaymentAlreadyUsed indicates the payment reference already funded a request,
	// whatever that request's outcome. A new reveal needs a new payment.
	ErrPaymentAlreadyUsed = errors.Wrap(errors.ErrPaymentRequired, "payment reference already used")

	// ErrSelfRequest indicates a provider requesting their own service.
	ErrSelfRequest = errors.Wrap(errors.ErrInvalidInput, "cannot request contact for your own service")

	// ErrVersionConflict indicates a compare-and-swap update lost to a concurrent transition.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "reveal request was modified concurrently")
)
