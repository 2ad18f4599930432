package service

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// randomNonceAEAD adapts a standard cipher.AEAD to the AEAD interface: every
// Encrypt draws a fresh nonce from crypto/rand and the tag rides at the end of
// the ciphertext. Both constructions embed it.
type randomNonceAEAD struct {
	aead cipher.AEAD
}

func (r randomNonceAEAD) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, r.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return r.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt returns no plaintext unless key, nonce, aad and ciphertext all check out.
func (r randomNonceAEAD) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != r.aead.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}

	plaintext, err := r.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
