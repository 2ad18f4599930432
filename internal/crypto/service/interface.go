// Package service provides the AEAD primitives and the envelope sealer built on them.
package service

import (
	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh random nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EnvelopeSealer seals payloads under a fresh data key wrapped by the root key.
// Implementations are stateless apart from the root key and safe for concurrent use.
type EnvelopeSealer interface {
	// Seal returns the binary envelope for plaintext.
	Seal(plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts an envelope. Every failure is ErrDecryptionFailed.
	Open(envelope []byte) ([]byte, error)
}
