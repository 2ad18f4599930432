// Package domain defines request-scoped identities and the challenge/session
// records used to establish them.
//
// An identity is the stable nullifier hash asserted by the external identity-proof
// gateway. It is never held in process-wide state: the HTTP layer resolves it from
// the session bearer token and passes it explicitly into every use case call.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller of one request.
type Identity struct {
	ID        string // nullifier hash, "0x" + 64 hex characters
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// Challenge is the commit half of commit-then-reveal. Only the nonce hash is stored;
// the nonce itself goes to the caller, who binds it as the proof signal.
type Challenge struct {
	ID         uuid.UUID
	NonceHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// IsUsable reports whether the challenge can still be redeemed at now.
func (c *Challenge) IsUsable(now time.Time) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}

// Session binds a bearer token hash to an identity.
type Session struct {
	ID         uuid.UUID
	IdentityID string
	TokenHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// IssueChallengeOutput is returned once; the nonce is never stored in plaintext.
type IssueChallengeOutput struct {
	ID        uuid.UUID
	Nonce     string
	ExpiresAt time.Time
}

// EstablishSessionInput is the reveal half: the nonce and the gateway assertion over it.
type EstablishSessionInput struct {
	NullifierHash string
	Nonce         string
	Assertion     string
}

// EstablishSessionOutput carries the plaintext bearer token. It is returned only once.
type EstablishSessionOutput struct {
	IdentityID string
	Token      string
	ExpiresAt  time.Time
}
