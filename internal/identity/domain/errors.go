package domain

import (
	"github.com/xambitlan/disclosure/internal/errors"
)

// Identity errors.
var (
	// ErrChallengeNotFound indicates the nonce does not belong to an issued challenge.
	ErrChallengeNotFound = errors.Wrap(errors.ErrUnauthorized, "challenge not found")

	// ErrChallengeExpired indicates the challenge TTL elapsed.
	ErrChallengeExpired = errors.Wrap(errors.ErrUnauthorized, "challenge expired")

	// ErrChallengeConsumed indicates the nonce was already redeemed.
	ErrChallengeConsumed = errors.Wrap(errors.ErrUnauthorized, "challenge already used")

	// ErrInvalidAssertion indicates the identity gateway assertion does not verify.
	ErrInvalidAssertion = errors.Wrap(errors.ErrUnauthorized, "invalid identity assertion")

	// ErrSessionNotFound indicates the bearer token is unknown.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found")

	// ErrSessionExpired indicates the bearer token is past its lifetime.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired")
)
