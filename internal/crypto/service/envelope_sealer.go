package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

// envelopeSealer implements EnvelopeSealer with a fresh data key per Seal.
type envelopeSealer struct {
	aeadManager AEADManager
	rootKey     *cryptoDomain.RootKey
	algorithm   cryptoDomain.Algorithm
}

// NewEnvelopeSealer creates an EnvelopeSealer that writes new envelopes with alg.
// Open always follows the algorithm recorded in the envelope header.
func NewEnvelopeSealer(
	aeadManager AEADManager,
	rootKey *cryptoDomain.RootKey,
	alg cryptoDomain.Algorithm,
) (EnvelopeSealer, error) {
	if _, err := alg.ID(); err != nil {
		return nil, err
	}
	if rootKey == nil {
		return nil, cryptoDomain.ErrRootKeyNotSet
	}
	return &envelopeSealer{
		aeadManager: aeadManager,
		rootKey:     rootKey,
		algorithm:   alg,
	}, nil
}

// Seal generates a data key, seals plaintext under it and wraps it with the root key.
func (s *envelopeSealer) Seal(plaintext []byte) ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}
	defer cryptoDomain.Zero(dek)

	envelope := &cryptoDomain.Envelope{
		Version:   cryptoDomain.EnvelopeVersion,
		Algorithm: s.algorithm,
	}
	header, err := envelope.Header()
	if err != nil {
		return nil, err
	}

	err = s.rootKey.Use(func(key []byte) error {
		kek, err := s.aeadManager.CreateCipher(key, s.algorithm)
		if err != nil {
			return err
		}
		sealedDEK, dekNonce, err := kek.Encrypt(dek, header)
		if err != nil {
			return err
		}
		envelope.WrappedDEK = append(dekNonce, sealedDEK...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wrap data key: %w", err)
	}

	cipher, err := s.aeadManager.CreateCipher(dek, s.algorithm)
	if err != nil {
		return nil, err
	}
	ciphertext, nonce, err := cipher.Encrypt(plaintext, header)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}
	envelope.Nonce = nonce
	envelope.Ciphertext = ciphertext

	return envelope.Marshal()
}

// Open reverses Seal. Parse errors, unknown headers, the wrong root key and any
// flipped bit all surface as ErrDecryptionFailed.
func (s *envelopeSealer) Open(data []byte) ([]byte, error) {
	envelope, err := cryptoDomain.ParseEnvelope(data)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	header, err := envelope.Header()
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	var dek []byte
	err = s.rootKey.Use(func(key []byte) error {
		kek, err := s.aeadManager.CreateCipher(key, envelope.Algorithm)
		if err != nil {
			return err
		}
		dekNonce := envelope.WrappedDEK[:cryptoDomain.NonceSize]
		sealedDEK := envelope.WrappedDEK[cryptoDomain.NonceSize:]
		dek, err = kek.Decrypt(sealedDEK, dekNonce, header)
		return err
	})
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(dek)

	cipher, err := s.aeadManager.CreateCipher(dek, envelope.Algorithm)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := cipher.Decrypt(envelope.Ciphertext, envelope.Nonce, header)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
