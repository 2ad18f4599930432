// Package service encrypts contact records into envelopes and verifies them against their hash.
package service

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
)

// EncryptionService protects contact records with envelope encryption.
// It holds no state beyond the sealer and is safe for concurrent use.
type EncryptionService interface {
	// Encrypt validates record, seals its canonical form and hashes it.
	Encrypt(record *contactDomain.ContactRecord) (*contactDomain.SealedContact, error)

	// Decrypt opens an envelope. Every failure is cryptoDomain.ErrDecryptionFailed.
	Decrypt(envelope []byte) (*contactDomain.ContactRecord, error)

	// VerifyHash reports whether envelope decrypts to a record hashing to expectedHash.
	// It never returns an error; a failed decryption is simply false.
	VerifyHash(envelope []byte, expectedHash string) bool
}

type encryptionService struct {
	sealer cryptoService.EnvelopeSealer
}

// NewEncryptionService creates an EncryptionService on top of an envelope sealer.
func NewEncryptionService(sealer cryptoService.EnvelopeSealer) EncryptionService {
	return &encryptionService{sealer: sealer}
}

func (e *encryptionService) Encrypt(record *contactDomain.ContactRecord) (*contactDomain.SealedContact, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	canonical, err := record.Canonical()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(canonical)

	envelope, err := e.sealer.Seal(canonical)
	if err != nil {
		return nil, err
	}

	return &contactDomain.SealedContact{
		Envelope:    envelope,
		ContactHash: contactDomain.HashCanonical(canonical),
	}, nil
}

func (e *encryptionService) Decrypt(envelope []byte) (*contactDomain.ContactRecord, error) {
	record, _, err := e.open(envelope)
	return record, err
}

func (e *encryptionService) VerifyHash(envelope []byte, expectedHash string) bool {
	_, hash, err := e.open(envelope)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

// open decrypts and decodes the envelope and returns the digest of the plaintext as stored.
func (e *encryptionService) open(envelope []byte) (*contactDomain.ContactRecord, string, error) {
	plaintext, err := e.sealer.Open(envelope)
	if err != nil {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	decoder := json.NewDecoder(bytes.NewReader(plaintext))
	decoder.DisallowUnknownFields()

	var record contactDomain.ContactRecord
	if err := decoder.Decode(&record); err != nil || record.Version != contactDomain.RecordVersion {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}

	return &record, contactDomain.HashCanonical(plaintext), nil
}
