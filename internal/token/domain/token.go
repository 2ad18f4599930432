// Package domain defines the access token capability granted by an approved reveal request.
//
// A token is self-contained: anyone holding the signing secret can verify it
// without a database lookup, and its lifetime is enforced only at verification.
package domain

import (
	"time"

	"github.com/xambitlan/disclosure/internal/errors"
)

// PayloadVersion is the current payload schema version.
const PayloadVersion = 1

// Reason explains why Verify rejected a token.
type Reason string

// Rejection reasons. Expired tokens carry a valid signature; the other two do not.
const (
	ReasonInvalidFormat    Reason = "invalid_format"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
)

// Token errors.
var (
	// ErrInvalidTokenFormat indicates a token that cannot be split or decoded.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrInvalidInput, "invalid access token format")

	// ErrInvalidTokenSignature indicates a token whose MAC does not match; treated as forgery.
	ErrInvalidTokenSignature = errors.Wrap(errors.ErrForbidden, "invalid access token signature")

	// ErrTokenExpired indicates an authentic token past its expiry.
	ErrTokenExpired = errors.Wrap(errors.ErrGone, "access token expired")

	// ErrSecretTooShort indicates a signing secret below the minimum length.
	ErrSecretTooShort = errors.New("ACCESS_TOKEN_SECRET must be at least 32 bytes")
)

// Payload is what a token grants: read access to one request's contact until ExpiresAt.
type Payload struct {
	RequestID  string
	ClientID   string
	ProviderID string
	ExpiresAt  time.Time
}

// VerifyResult is the outcome of verifying a token.
type VerifyResult struct {
	Valid   bool
	Payload *Payload // set when Valid or when Reason is ReasonExpired
	Reason  Reason
}

// Err returns the error matching Reason, or nil for a valid token.
func (r *VerifyResult) Err() error {
	if r.Valid {
		return nil
	}
	switch r.Reason {
	case ReasonExpired:
		return ErrTokenExpired
	case ReasonInvalidSignature:
		return ErrInvalidTokenSignature
	default:
		return ErrInvalidTokenFormat
	}
}
