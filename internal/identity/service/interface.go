// Package service provides the stateless primitives behind identity establishment.
package service

import "context"

// NonceService generates anti-replay nonces and commits to them by hash.
type NonceService interface {
	// Generate returns 32 random bytes as 64 lowercase hex characters.
	Generate() (string, error)

	// Hash returns the Keccak-256 digest of the nonce as lowercase hex.
	Hash(nonce string) string

	// Verify reports whether nonce hashes to digest, in constant time.
	Verify(nonce, digest string) bool
}

// TokenService generates session bearer tokens and hashes them for storage.
type TokenService interface {
	// GenerateToken returns a random URL-safe token and its SHA-256 hex hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken returns the SHA-256 hex hash of a token.
	HashToken(plainToken string) string
}

// AssertionVerifier checks the identity gateway's statement that nullifierHash
// completed a proof whose signal is the challenge nonce.
type AssertionVerifier interface {
	Verify(ctx context.Context, nullifierHash, signal, assertion string) error
}
