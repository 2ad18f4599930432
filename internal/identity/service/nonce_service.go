package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const nonceBytes = 32

type nonceService struct{}

// NewNonceService creates a NonceService hashing with legacy Keccak-256,
// the digest the identity-proof gateway uses for signals.
func NewNonceService() NonceService {
	return &nonceService{}
}

func (n *nonceService) Generate() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (n *nonceService) Hash(nonce string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(nonce))
	return hex.EncodeToString(h.Sum(nil))
}

func (n *nonceService) Verify(nonce, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(n.Hash(nonce)), []byte(digest)) == 1
}
