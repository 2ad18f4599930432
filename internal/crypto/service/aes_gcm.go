package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

// AESGCMCipher is AES-256-GCM with a 12-byte random nonce. Safe for concurrent use.
type AESGCMCipher struct {
	randomNonceAEAD
}

// NewAESGCM rejects any key that is not cryptoDomain.KeySize bytes; aes.NewCipher
// alone would silently accept AES-128 and AES-192 keys.
func NewAESGCM(key []byte) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{randomNonceAEAD{aead: gcm}}, nil
}
