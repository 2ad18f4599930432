package service

import (
	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

// AEADManagerService picks the cipher construction for a vault algorithm.
type AEADManagerService struct{}

// NewAEADManager returns the stateless manager.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher builds the AEAD for alg around key. The key must be exactly
// cryptoDomain.KeySize bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
